// Package expenses records cash ledger entries per tenant.
package expenses

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction values for ledger entries.
const (
	CashIn  = "cash_in"
	CashOut = "cash_out"
)

// Entry is one cash movement outside the rent pipeline, such as a
// maintenance bill or a deposit refund.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Direction   string    `json:"direction"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	EntryDate   time.Time `json:"entry_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateInput captures ledger entry input.
type CreateInput struct {
	TenantID    uuid.UUID
	Direction   string
	Amount      float64
	Description string
	EntryDate   time.Time
}

// Validate ensures correctness.
func (in CreateInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("expenses: tenant id required")
	}
	if in.Direction != CashIn && in.Direction != CashOut {
		return errors.New("expenses: direction must be cash_in or cash_out")
	}
	if in.Amount <= 0 {
		return errors.New("expenses: amount must be positive")
	}
	if strings.TrimSpace(in.Description) == "" {
		return errors.New("expenses: description required")
	}
	if in.EntryDate.IsZero() {
		return errors.New("expenses: entry date required")
	}
	return nil
}

// ErrNotFound occurs when an entry is missing.
var ErrNotFound = errors.New("expenses: not found")
