// Package payments manages the rent payment lifecycle: recording,
// approval and rejection.
package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Payment status values.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

// Approval status values.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// GraceDays is the fixed number of days past the due date before a
// pending payment lapses into overdue.
const GraceDays = 5

// Payment is one rent charge against a member. Month and Year name the
// billing period the charge belongs to, independent of when it was recorded.
type Payment struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	MemberID       uuid.UUID  `json:"member_id"`
	Month          int        `json:"month"`
	Year           int        `json:"year"`
	Amount         float64    `json:"amount"`
	PaymentStatus  string     `json:"payment_status"`
	ApprovalStatus string     `json:"approval_status"`
	DueDate        time.Time  `json:"due_date"`
	OverdueDate    time.Time  `json:"overdue_date"`
	PaidDate       *time.Time `json:"paid_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateInput captures payment recording input.
type CreateInput struct {
	TenantID uuid.UUID
	MemberID uuid.UUID
	Amount   float64
	DueDate  time.Time
}

// Validate ensures correctness.
func (in CreateInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("payments: tenant id required")
	}
	if in.MemberID == uuid.Nil {
		return errors.New("payments: member id required")
	}
	if in.Amount <= 0 {
		return errors.New("payments: amount must be positive")
	}
	if in.DueDate.IsZero() {
		return errors.New("payments: due date required")
	}
	return nil
}

var (
	// ErrNotFound occurs when a payment is missing.
	ErrNotFound = errors.New("payments: not found")
	// ErrAlreadyDecided occurs when approve or reject is attempted on a
	// payment whose approval is already terminal.
	ErrAlreadyDecided = errors.New("payments: approval already decided")
)
