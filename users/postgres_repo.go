package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanfix/go-civic-auth/internal/db"
)

var _ Repo = (*PostgresRepo)(nil)

// PostgresRepo persists users in Postgres.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates a user repository backed by the given pool.
func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := db.Get(ctx, r.pool, &user,
		`SELECT id, email, full_name, role, '' AS password_hash, active, created_at, last_login_at
		   FROM users WHERE id = $1`, id)
	if db.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users.GetByID: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := db.Get(ctx, r.pool, &user,
		`SELECT id, email, full_name, role, password_hash, active, created_at, last_login_at
		   FROM users WHERE email = $1`, email)
	if db.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users.GetByEmail: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, user *User) error {
	_, err := db.Exec(ctx, r.pool,
		`INSERT INTO users (id, email, full_name, role, password_hash, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET email = EXCLUDED.email,
		     full_name = EXCLUDED.full_name,
		     role = EXCLUDED.role,
		     password_hash = EXCLUDED.password_hash,
		     active = EXCLUDED.active`,
		user.ID, user.Email, user.FullName, user.Role, user.PasswordHash, user.Active)
	if err != nil {
		return fmt.Errorf("users.Upsert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := db.Exec(ctx, r.pool,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("users.SetLastLogin: %w", err)
	}
	return nil
}
