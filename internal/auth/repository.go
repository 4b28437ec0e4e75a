package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateToken(ctx context.Context, t *Token) error
	FindToken(ctx context.Context, id string) (*Token, error)
	DeleteToken(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
		SELECT id, email, password_hash, is_active, created_at
		FROM users WHERE email = $1`
	var u User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &u, nil
}

// CreateToken persists an issued token for auditing and validation.
func (r *PGRepository) CreateToken(ctx context.Context, t *Token) error {
	const q = `
		INSERT INTO auth_tokens (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, q, t.ID, t.UserID,
		pgtype.Timestamptz{Time: t.ExpiresAt.UTC(), Valid: true},
		pgtype.Timestamptz{Time: t.CreatedAt.UTC(), Valid: true})
	if err != nil {
		return fmt.Errorf("auth: create token: %w", err)
	}
	return nil
}

// FindToken fetches a token record by its opaque id.
func (r *PGRepository) FindToken(ctx context.Context, id string) (*Token, error) {
	const q = `
		SELECT id, user_id, expires_at, created_at
		FROM auth_tokens WHERE id = $1`
	var t Token
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("auth: find token: %w", err)
	}
	return &t, nil
}

// DeleteToken removes a token record, ending the session.
func (r *PGRepository) DeleteToken(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("auth: delete token: %w", err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
