package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts payment persistence.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, approvalStatus string) ([]Payment, error)
	Update(ctx context.Context, p *Payment) error
}

// PGRepository implements Repository on Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a Postgres payment repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const paymentColumns = `id, tenant_id, member_id, month, year, amount, payment_status, approval_status, due_date, overdue_date, paid_date, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.TenantID, &p.MemberID, &p.Month, &p.Year, &p.Amount,
		&p.PaymentStatus, &p.ApprovalStatus, &p.DueDate, &p.OverdueDate, &p.PaidDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, p *Payment) error {
	const q = `
		INSERT INTO payments (id, tenant_id, member_id, month, year, amount, payment_status, approval_status, due_date, overdue_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, q,
		p.ID, p.TenantID, p.MemberID, p.Month, p.Year, p.Amount, p.PaymentStatus, p.ApprovalStatus, p.DueDate, p.OverdueDate, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("payments: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payments: get: %w", err)
	}
	return p, nil
}

func (r *PGRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, approvalStatus string) ([]Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1`
	args := []any{tenantID}
	if approvalStatus != "" {
		q += ` AND approval_status = $2`
		args = append(args, approvalStatus)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer rows.Close()

	out := make([]Payment, 0, 32)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("payments: scan: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, p *Payment) error {
	const q = `
		UPDATE payments SET payment_status = $2, approval_status = $3, paid_date = $4
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, p.ID, p.PaymentStatus, p.ApprovalStatus, p.PaidDate)
	if err != nil {
		return fmt.Errorf("payments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
