package rooms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts room persistence.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository on Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a Postgres room repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const roomColumns = `id, tenant_id, name, capacity, rent, COALESCE(recurring_charge, 0), created_at`

func (r *PGRepository) Create(ctx context.Context, room *Room) error {
	const q = `
		INSERT INTO rooms (id, tenant_id, name, capacity, rent, recurring_charge, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, q, room.ID, room.TenantID, room.Name, room.Capacity, room.Rent, room.RecurringCharge, room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return fmt.Errorf("rooms: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	var room Room
	err := r.pool.QueryRow(ctx, q, id).Scan(&room.ID, &room.TenantID, &room.Name, &room.Capacity, &room.Rent, &room.RecurringCharge, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rooms: get: %w", err)
	}
	return &room, nil
}

func (r *PGRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE tenant_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("rooms: list: %w", err)
	}
	defer rows.Close()

	out := make([]Room, 0, 16)
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.TenantID, &room.Name, &room.Capacity, &room.Rent, &room.RecurringCharge, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("rooms: scan: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, room *Room) error {
	const q = `
		UPDATE rooms SET name = $2, capacity = $3, rent = $4, recurring_charge = $5
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, room.ID, room.Name, room.Capacity, room.Rent, room.RecurringCharge)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return fmt.Errorf("rooms: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrOccupied
		}
		return fmt.Errorf("rooms: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
