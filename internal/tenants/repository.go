package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts tenant persistence.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context, segment string) ([]Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository on Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a Postgres tenant repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, t *Tenant) error {
	const q = `
		INSERT INTO tenants (id, name, segment, location, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, q, t.ID, t.Name, t.Segment, t.Location, t.CreatedAt); err != nil {
		return fmt.Errorf("tenants: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	const q = `
		SELECT id, name, segment, location, created_at
		FROM tenants WHERE id = $1`
	var t Tenant
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Segment, &t.Location, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tenants: get: %w", err)
	}
	return &t, nil
}

func (r *PGRepository) List(ctx context.Context, segment string) ([]Tenant, error) {
	q := `
		SELECT id, name, segment, location, created_at
		FROM tenants`
	args := []any{}
	if segment != "" {
		q += ` WHERE segment = $1`
		args = append(args, segment)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("tenants: list: %w", err)
	}
	defer rows.Close()

	out := make([]Tenant, 0, 16)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Segment, &t.Location, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("tenants: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, t *Tenant) error {
	const q = `
		UPDATE tenants SET name = $2, segment = $3, location = $4
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, t.ID, t.Name, t.Segment, t.Location)
	if err != nil {
		return fmt.Errorf("tenants: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503: foreign_key_violation, rooms/members/payments still attached.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrHasDependents
		}
		return fmt.Errorf("tenants: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
