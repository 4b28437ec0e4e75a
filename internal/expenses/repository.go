package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts ledger persistence.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository on Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a Postgres ledger repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, tenant_id, direction, amount, description, entry_date, created_at`

func (r *PGRepository) Create(ctx context.Context, e *Entry) error {
	const q = `
		INSERT INTO expenses (id, tenant_id, direction, amount, description, entry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, q, e.ID, e.TenantID, e.Direction, e.Amount, e.Description, e.EntryDate, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("expenses: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM expenses WHERE id = $1`
	var e Entry
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.TenantID, &e.Direction, &e.Amount, &e.Description, &e.EntryDate, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("expenses: get: %w", err)
	}
	return &e, nil
}

func (r *PGRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM expenses WHERE tenant_id = $1`
	args := []any{tenantID}
	if !from.IsZero() && !to.IsZero() {
		q += ` AND entry_date BETWEEN $2 AND $3`
		args = append(args, from, to)
	}
	q += ` ORDER BY entry_date DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("expenses: list: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, 32)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Direction, &e.Amount, &e.Description, &e.EntryDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("expenses: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("expenses: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
