package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfix/go-civic-auth/internal/db"
)

var _ Repo = (*PostgresRepo)(nil)

// PostgresRepo persists sessions in Postgres. Touch and Deactivate rely on
// single-row UPDATE atomicity; no application-level locking.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates a session repository backed by the given pool.
func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

func (r *PostgresRepo) Create(ctx context.Context, userID, tokenFamily string, ttl time.Duration) (*Session, error) {
	if userID == "" || tokenFamily == "" {
		return nil, errors.New("sessions.Create: user ID and token family are required")
	}
	if ttl <= 0 {
		return nil, errors.New("sessions.Create: ttl must be positive")
	}

	now := NowTimeFunc()
	session := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		TokenFamily:  tokenFamily,
		IsActive:     true,
		ExpiresAt:    now.Add(ttl),
		LastActiveAt: now,
		CreatedAt:    now,
	}

	_, err := db.Exec(ctx, r.pool,
		`INSERT INTO sessions (id, user_id, token_family, is_active, expires_at, last_active_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.UserID, session.TokenFamily, session.IsActive,
		session.ExpiresAt, session.LastActiveAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sessions.Create: %w", err)
	}
	return session, nil
}

func (r *PostgresRepo) FindActive(ctx context.Context, tokenFamily, userID string) (*Session, error) {
	var session Session
	err := db.Get(ctx, r.pool, &session,
		`SELECT id, user_id, token_family, is_active, expires_at, last_active_at, created_at
		   FROM sessions
		  WHERE token_family = $1 AND user_id = $2 AND is_active`,
		tokenFamily, userID)
	if db.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessions.FindActive: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepo) FindMostRecentActive(ctx context.Context, userID string) (*Session, error) {
	var session Session
	err := db.Get(ctx, r.pool, &session,
		`SELECT id, user_id, token_family, is_active, expires_at, last_active_at, created_at
		   FROM sessions
		  WHERE user_id = $1 AND is_active
		  ORDER BY last_active_at DESC
		  LIMIT 1`,
		userID)
	if db.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessions.FindMostRecentActive: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepo) Touch(ctx context.Context, session *Session) error {
	now := NowTimeFunc()
	_, err := db.Exec(ctx, r.pool,
		`UPDATE sessions SET last_active_at = $2 WHERE id = $1`, session.ID, now)
	if err != nil {
		return fmt.Errorf("sessions.Touch: %w", err)
	}
	session.LastActiveAt = now
	return nil
}

func (r *PostgresRepo) Deactivate(ctx context.Context, session *Session) error {
	_, err := db.Exec(ctx, r.pool,
		`UPDATE sessions SET is_active = FALSE WHERE id = $1`, session.ID)
	if err != nil {
		return fmt.Errorf("sessions.Deactivate: %w", err)
	}
	session.IsActive = false
	return nil
}

func (r *PostgresRepo) DeactivateAllForUser(ctx context.Context, userID string) (int, error) {
	tag, err := db.Exec(ctx, r.pool,
		`UPDATE sessions SET is_active = FALSE WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return 0, fmt.Errorf("sessions.DeactivateAllForUser: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
