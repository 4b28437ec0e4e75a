// Package tenants manages the PG housing units that own rooms and members.
package tenants

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Segment values mirror the reporting partition; every tenant belongs to
// exactly one.
const (
	SegmentMens   = "mens"
	SegmentWomens = "womens"
)

// Tenant is a PG housing unit.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Segment   string    `json:"segment"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput captures tenant creation input.
type CreateInput struct {
	Name     string
	Segment  string
	Location string
}

// Validate ensures correctness.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("tenants: name required")
	}
	if in.Segment != SegmentMens && in.Segment != SegmentWomens {
		return errors.New("tenants: segment must be mens or womens")
	}
	return nil
}

var (
	// ErrNotFound occurs when a tenant is missing.
	ErrNotFound = errors.New("tenants: not found")
	// ErrHasDependents occurs when deletion is attempted while rooms,
	// members or payments still reference the tenant.
	ErrHasDependents = errors.New("tenants: rooms, members or payments still attached")
)
