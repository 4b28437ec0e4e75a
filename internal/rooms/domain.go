// Package rooms manages rooms within a tenant and their rent configuration.
package rooms

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room is a rentable unit inside a tenant. RecurringCharge covers fixed
// add-ons billed with the rent, such as wifi or housekeeping.
type Room struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	Capacity        int       `json:"capacity"`
	Rent            float64   `json:"rent"`
	RecurringCharge float64   `json:"recurring_charge"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateInput captures room creation input.
type CreateInput struct {
	TenantID        uuid.UUID
	Name            string
	Capacity        int
	Rent            float64
	RecurringCharge float64
}

// Validate ensures correctness.
func (in CreateInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("rooms: tenant id required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("rooms: name required")
	}
	if in.Capacity < 1 {
		return errors.New("rooms: capacity must be at least 1")
	}
	if in.Rent < 0 || in.RecurringCharge < 0 {
		return errors.New("rooms: charges cannot be negative")
	}
	return nil
}

var (
	// ErrNotFound occurs when a room is missing.
	ErrNotFound = errors.New("rooms: not found")
	// ErrDuplicateName occurs when a room name already exists in the tenant.
	ErrDuplicateName = errors.New("rooms: name already used in tenant")
	// ErrOccupied occurs when deletion is attempted while members are assigned.
	ErrOccupied = errors.New("rooms: members still assigned")
)
