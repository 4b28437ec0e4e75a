package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service carries payment business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a payment service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create records a pending rent charge. The overdue date is the due
// date plus the fixed grace period.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	due := in.DueDate.UTC()
	p := &Payment{
		ID:             uuid.New(),
		TenantID:       in.TenantID,
		MemberID:       in.MemberID,
		Month:          int(due.Month()),
		Year:           due.Year(),
		Amount:         in.Amount,
		PaymentStatus:  PaymentPending,
		ApprovalStatus: ApprovalPending,
		DueDate:        due,
		OverdueDate:    due.AddDate(0, 0, GraceDays),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded", "payment_id", p.ID, "member_id", p.MemberID, "amount", p.Amount)
	return p, nil
}

// Get fetches one payment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTenant returns a tenant's payments, optionally filtered by
// approval status.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID, approvalStatus string) ([]Payment, error) {
	return s.repo.ListByTenant(ctx, tenantID, approvalStatus)
}

// Approve marks a pending payment approved and paid. Approval is
// terminal; a decided payment cannot be approved again.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != ApprovalPending {
		return nil, ErrAlreadyDecided
	}
	p.ApprovalStatus = ApprovalApproved
	p.PaymentStatus = PaymentPaid
	paid := s.now().UTC()
	p.PaidDate = &paid
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment approved", "payment_id", p.ID, "amount", p.Amount)
	return p, nil
}

// Reject marks a pending payment rejected. The payment status is left
// untouched: a charge already marked overdue stays visibly overdue, and the
// sweep never touches decided payments.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != ApprovalPending {
		return nil, ErrAlreadyDecided
	}
	p.ApprovalStatus = ApprovalRejected
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment rejected", "payment_id", p.ID)
	return p, nil
}
