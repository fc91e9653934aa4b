package repofakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urbanfix/go-civic-auth/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session repository for tests.
type FakeSessionRepo struct {
	byID map[string]*sessions.Session
	lock sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		byID: make(map[string]*sessions.Session),
	}
}

func (r *FakeSessionRepo) Create(_ context.Context, userID, tokenFamily string, ttl time.Duration) (*sessions.Session, error) {
	if userID == "" || tokenFamily == "" {
		return nil, errors.New("user ID and token family are required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	now := sessions.NowTimeFunc()
	session := &sessions.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenFamily:  tokenFamily,
		IsActive:     true,
		ExpiresAt:    now.Add(ttl),
		LastActiveAt: now,
		CreatedAt:    now,
	}
	r.byID[session.ID] = session

	copied := *session
	return &copied, nil
}

func (r *FakeSessionRepo) FindActive(_ context.Context, tokenFamily, userID string) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, session := range r.byID {
		if session.IsActive && session.TokenFamily == tokenFamily && session.UserID == userID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, sessions.ErrNotFound
}

func (r *FakeSessionRepo) FindMostRecentActive(_ context.Context, userID string) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var latest *sessions.Session
	for _, session := range r.byID {
		if !session.IsActive || session.UserID != userID {
			continue
		}
		if latest == nil || session.LastActiveAt.After(latest.LastActiveAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, sessions.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *FakeSessionRepo) Touch(_ context.Context, session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.byID[session.ID]
	if !ok {
		return sessions.ErrNotFound
	}
	now := sessions.NowTimeFunc()
	stored.LastActiveAt = now
	session.LastActiveAt = now
	return nil
}

func (r *FakeSessionRepo) Deactivate(_ context.Context, session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if stored, ok := r.byID[session.ID]; ok {
		stored.IsActive = false
	}
	session.IsActive = false
	return nil
}

func (r *FakeSessionRepo) DeactivateAllForUser(_ context.Context, userID string) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	revoked := 0
	for _, session := range r.byID {
		if session.IsActive && session.UserID == userID {
			session.IsActive = false
			revoked++
		}
	}
	return revoked, nil
}

// Get returns the stored session by ID, for test assertions.
func (r *FakeSessionRepo) Get(id string) (*sessions.Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	session, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// Count returns how many sessions exist, active or not, for test assertions.
func (r *FakeSessionRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byID)
}
