package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository over the shared connection pool. The
// pool is constructed once at process start and passed in; the package holds
// no global client.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds the repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// SegmentSnapshot loads the segment's tenants with rooms, members and the
// payments whose creation time or due date falls inside the window, both ends
// inclusive.
func (r *PGRepository) SegmentSnapshot(ctx context.Context, segment Segment, w Window) ([]TenantData, error) {
	tenants, index, err := r.loadTenants(ctx, segment)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return []TenantData{}, nil
	}
	if err := r.loadRooms(ctx, segment, tenants, index); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, segment, tenants, index); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, segment, w, tenants, index); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *PGRepository) loadTenants(ctx context.Context, segment Segment) ([]TenantData, map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, segment, location
		FROM tenants
		WHERE segment = $1
		ORDER BY name, id`, string(segment))
	if err != nil {
		return nil, nil, fmt.Errorf("reports: load tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]TenantData, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var t Tenant
		var seg string
		if err := rows.Scan(&t.ID, &t.Name, &seg, &t.Location); err != nil {
			return nil, nil, fmt.Errorf("reports: scan tenant: %w", err)
		}
		t.Segment = Segment(seg)
		index[t.ID] = len(tenants)
		tenants = append(tenants, TenantData{Tenant: t})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reports: load tenants: %w", err)
	}
	return tenants, index, nil
}

func (r *PGRepository) loadRooms(ctx context.Context, segment Segment, tenants []TenantData, index map[uuid.UUID]int) error {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.tenant_id, r.name, r.capacity, r.rent
		FROM rooms r
		JOIN tenants t ON t.id = r.tenant_id
		WHERE t.segment = $1
		ORDER BY r.name, r.id`, string(segment))
	if err != nil {
		return fmt.Errorf("reports: load rooms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.TenantID, &room.Name, &room.Capacity, &room.Rent); err != nil {
			return fmt.Errorf("reports: scan room: %w", err)
		}
		if i, ok := index[room.TenantID]; ok {
			tenants[i].Rooms = append(tenants[i].Rooms, room)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reports: load rooms: %w", err)
	}
	return nil
}

func (r *PGRepository) loadMembers(ctx context.Context, segment Segment, tenants []TenantData, index map[uuid.UUID]int) error {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.tenant_id, m.room_id, m.name, m.join_date, m.departure_date,
		       COALESCE(m.advance, 0), m.created_at
		FROM members m
		JOIN tenants t ON t.id = m.tenant_id
		WHERE t.segment = $1`, string(segment))
	if err != nil {
		return fmt.Errorf("reports: load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Member
		var roomID pgtype.UUID
		var departure pgtype.Timestamptz
		if err := rows.Scan(&m.ID, &m.TenantID, &roomID, &m.Name, &m.JoinDate, &departure, &m.Advance, &m.CreatedAt); err != nil {
			return fmt.Errorf("reports: scan member: %w", err)
		}
		if roomID.Valid {
			id := uuid.UUID(roomID.Bytes)
			m.RoomID = &id
		}
		if departure.Valid {
			t := departure.Time
			m.DepartureDate = &t
		}
		if i, ok := index[m.TenantID]; ok {
			tenants[i].Members = append(tenants[i].Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reports: load members: %w", err)
	}
	return nil
}

func (r *PGRepository) loadPayments(ctx context.Context, segment Segment, w Window, tenants []TenantData, index map[uuid.UUID]int) error {
	// The (created OR due) inclusive-inclusive window mirrors PaymentInWindow.
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.member_id, p.tenant_id, p.month, p.year, COALESCE(p.amount, 0),
		       p.due_date, p.overdue_date, p.payment_status, p.approval_status,
		       p.paid_date, p.created_at
		FROM payments p
		JOIN tenants t ON t.id = p.tenant_id
		WHERE t.segment = $1
		  AND ((p.created_at BETWEEN $2 AND $3) OR (p.due_date BETWEEN $2 AND $3))`,
		string(segment), w.Start, w.End)
	if err != nil {
		return fmt.Errorf("reports: load payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Payment
		var paymentStatus, approvalStatus string
		var paid pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.MemberID, &p.TenantID, &p.Month, &p.Year, &p.Amount,
			&p.DueDate, &p.OverdueDate, &paymentStatus, &approvalStatus, &paid, &p.CreatedAt); err != nil {
			return fmt.Errorf("reports: scan payment: %w", err)
		}
		p.PaymentStatus = PaymentStatus(paymentStatus)
		p.ApprovalStatus = ApprovalStatus(approvalStatus)
		if paid.Valid {
			t := paid.Time
			p.PaidDate = &t
		}
		if i, ok := index[p.TenantID]; ok {
			tenants[i].Payments = append(tenants[i].Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reports: load payments: %w", err)
	}
	return nil
}

// ExpenseTotals sums the segment's cash movements dated inside the window.
func (r *PGRepository) ExpenseTotals(ctx context.Context, segment Segment, w Window) (ExpenseTotals, error) {
	var totals ExpenseTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'cash_in'), 0),
		       COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'cash_out'), 0)
		FROM expenses e
		JOIN tenants t ON t.id = e.tenant_id
		WHERE t.segment = $1 AND e.entry_date BETWEEN $2 AND $3`,
		string(segment), w.Start, w.End).Scan(&totals.CashIn, &totals.CashOut)
	if err != nil {
		return ExpenseTotals{}, fmt.Errorf("reports: expense totals: %w", err)
	}
	return totals, nil
}

// MarkOverdue applies the bulk pending-to-overdue correction for the
// segment's payments. The predicate re-evaluates row state at update time, so
// concurrent runs converge.
func (r *PGRepository) MarkOverdue(ctx context.Context, segment Segment, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments p
		SET payment_status = 'overdue'
		FROM tenants t
		WHERE t.id = p.tenant_id
		  AND t.segment = $1
		  AND p.approval_status = 'pending'
		  AND p.payment_status = 'pending'
		  AND p.overdue_date < $2`, string(segment), now)
	if err != nil {
		return 0, fmt.Errorf("reports: mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetBundle fetches the serialised envelope for the key.
func (r *PGRepository) GetBundle(ctx context.Context, key Key) ([]byte, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload
		FROM report_cache
		WHERE segment = $1 AND kind = $2 AND period = $3 AND year = $4`,
		string(key.Segment), string(key.Kind), key.Period, key.Year).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reports: get cached bundle: %w", err)
	}
	return payload, nil
}

// PutBundle upserts the envelope for the key, last write wins.
func (r *PGRepository) PutBundle(ctx context.Context, key Key, payload []byte, generatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_cache (segment, kind, period, year, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (segment, kind, period, year)
		DO UPDATE SET payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at`,
		string(key.Segment), string(key.Kind), key.Period, key.Year, payload, generatedAt)
	if err != nil {
		return fmt.Errorf("reports: put cached bundle: %w", err)
	}
	return nil
}
