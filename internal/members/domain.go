// Package members manages residents: onboarding, room assignment and
// departure.
package members

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member is a resident of a tenant, assigned to one room.
type Member struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	RoomID        uuid.UUID  `json:"room_id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	JoinDate      time.Time  `json:"join_date"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	Advance       float64    `json:"advance"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Active reports whether the member currently lives in the tenant.
func (m Member) Active() bool {
	return m.DepartureDate == nil
}

// CreateInput captures member onboarding input.
type CreateInput struct {
	TenantID uuid.UUID
	RoomID   uuid.UUID
	Name     string
	Phone    string
	JoinDate time.Time
	Advance  float64
}

// Validate ensures correctness.
func (in CreateInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("members: tenant id required")
	}
	if in.RoomID == uuid.Nil {
		return errors.New("members: room id required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("members: name required")
	}
	if in.JoinDate.IsZero() {
		return errors.New("members: join date required")
	}
	if in.Advance < 0 {
		return errors.New("members: advance cannot be negative")
	}
	return nil
}

var (
	// ErrNotFound occurs when a member is missing.
	ErrNotFound = errors.New("members: not found")
	// ErrRoomFull occurs when the target room is at capacity.
	ErrRoomFull = errors.New("members: room is at capacity")
	// ErrAlreadyDeparted occurs when departure is recorded twice.
	ErrAlreadyDeparted = errors.New("members: already departed")
)
