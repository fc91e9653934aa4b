package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/urbanfix/go-civic-auth/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user repository for tests.
type FakeUserRepo struct {
	usersByID map[string]*users.User
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		usersByID: make(map[string]*users.User),
	}
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.usersByID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	copied.PasswordHash = ""
	return &copied, nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, user := range r.usersByID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *user
	r.usersByID[user.ID] = &copied
	return nil
}

func (r *FakeUserRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.usersByID[id]
	if !ok {
		return users.ErrNotFound
	}
	user.LastLoginAt = at
	return nil
}
