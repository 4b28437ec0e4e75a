package rooms

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service carries room business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a room service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new room under a tenant.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Room, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	room := &Room{
		ID:              uuid.New(),
		TenantID:        in.TenantID,
		Name:            in.Name,
		Capacity:        in.Capacity,
		Rent:            in.Rent,
		RecurringCharge: in.RecurringCharge,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info("room created", "room_id", room.ID, "tenant_id", room.TenantID)
	return room, nil
}

// Get fetches one room.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTenant returns the rooms of a tenant.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Room, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// Update edits room attributes. Rent changes take effect for future
// payments only; recorded payments keep their original amounts.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (*Room, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Name = in.Name
	room.Capacity = in.Capacity
	room.Rent = in.Rent
	room.RecurringCharge = in.RecurringCharge
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes an unoccupied room.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
