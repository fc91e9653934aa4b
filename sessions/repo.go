package sessions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
)

// Repo defines the interface for session storage. Lazy expiry is the caller's
// job: a session past ExpiresAt must be deactivated and treated as absent on
// its next observation.
type Repo interface {
	// Create inserts a new active session for the user and token family,
	// expiring ttl from now.
	Create(ctx context.Context, userID, tokenFamily string, ttl time.Duration) (*Session, error)

	// FindActive retrieves the active session for a (token family, user) pair.
	FindActive(ctx context.Context, tokenFamily, userID string) (*Session, error)

	// FindMostRecentActive retrieves the user's most recently active session.
	// Fallback for bearer tokens that predate session binding; approximate
	// when the user is logged in on several devices.
	FindMostRecentActive(ctx context.Context, userID string) (*Session, error)

	// Touch sets the session's LastActiveAt to now and persists it.
	// Concurrent touches race last-write-wins; the field is advisory.
	Touch(ctx context.Context, session *Session) error

	// Deactivate marks the session inactive. Idempotent.
	Deactivate(ctx context.Context, session *Session) error

	// DeactivateAllForUser marks every active session of the user inactive
	// and returns how many were revoked.
	DeactivateAllForUser(ctx context.Context, userID string) (int, error)
}
