package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayloft/stayloft/internal/platform/db"
)

// Repository abstracts member persistence. Create and AssignRoom enforce
// room capacity atomically with the write.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Member, error)
	Update(ctx context.Context, m *Member) error
	AssignRoom(ctx context.Context, id, roomID uuid.UUID) error
}

// PGRepository implements Repository on Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a Postgres member repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const memberColumns = `id, tenant_id, room_id, name, phone, join_date, departure_date, advance, created_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.TenantID, &m.RoomID, &m.Name, &m.Phone, &m.JoinDate, &m.DepartureDate, &m.Advance, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts the member after locking the room row, so two concurrent
// onboardings cannot both pass the capacity check for the last free slot.
func (r *PGRepository) Create(ctx context.Context, m *Member) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := roomHasVacancy(ctx, tx, m.RoomID); err != nil {
			return err
		}
		const q = `
			INSERT INTO members (id, tenant_id, room_id, name, phone, join_date, departure_date, advance, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err := tx.Exec(ctx, q,
			m.ID, m.TenantID, m.RoomID, m.Name, m.Phone, m.JoinDate, m.DepartureDate, m.Advance, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("members: insert: %w", err)
		}
		return nil
	})
}

// AssignRoom moves a member into another room under the same room lock as
// Create.
func (r *PGRepository) AssignRoom(ctx context.Context, id, roomID uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := roomHasVacancy(ctx, tx, roomID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE members SET room_id = $2 WHERE id = $1`, id, roomID)
		if err != nil {
			return fmt.Errorf("members: assign room: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func roomHasVacancy(ctx context.Context, tx pgx.Tx, roomID uuid.UUID) error {
	var capacity int
	err := tx.QueryRow(ctx, `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("members: lock room: %w", err)
	}
	var occupants int
	const q = `SELECT COUNT(*) FROM members WHERE room_id = $1 AND departure_date IS NULL`
	if err := tx.QueryRow(ctx, q, roomID).Scan(&occupants); err != nil {
		return fmt.Errorf("members: count occupants: %w", err)
	}
	if occupants >= capacity {
		return ErrRoomFull
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	q := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("members: get: %w", err)
	}
	return m, nil
}

func (r *PGRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Member, error) {
	q := `SELECT ` + memberColumns + ` FROM members WHERE tenant_id = $1`
	if activeOnly {
		q += ` AND departure_date IS NULL`
	}
	q += ` ORDER BY join_date DESC`

	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("members: list: %w", err)
	}
	defer rows.Close()

	out := make([]Member, 0, 32)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("members: scan: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, m *Member) error {
	const q = `
		UPDATE members
		SET room_id = $2, name = $3, phone = $4, departure_date = $5, advance = $6
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, m.ID, m.RoomID, m.Name, m.Phone, m.DepartureDate, m.Advance)
	if err != nil {
		return fmt.Errorf("members: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

