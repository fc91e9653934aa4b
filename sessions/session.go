// Package sessions owns the persisted record behind every login. A session is
// keyed by its refresh-token family: revoking the session invalidates the
// refresh path for that login regardless of token cryptographic validity.
package sessions

import "time"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Session is one logical login. ExpiresAt is fixed at creation and never
// extended; only LastActiveAt moves. Once IsActive is false the session can
// never reactivate.
type Session struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	TokenFamily  string    `json:"token_family" db:"token_family"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	LastActiveAt time.Time `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session's absolute expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
