package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
)

// Repo defines the interface for user lookups and mutations. The auth core
// only ever reads users; writes exist for registration and login bookkeeping.
type Repo interface {
	// GetByID retrieves a user by ID with the password hash stripped.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email including the password hash,
	// for credential verification only.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Upsert creates or updates a user.
	Upsert(ctx context.Context, user *User) error

	// SetLastLogin records a successful login time.
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}
