package tenants

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service carries tenant business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a tenant service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new tenant.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t := &Tenant{
		ID:        uuid.New(),
		Name:      in.Name,
		Segment:   in.Segment,
		Location:  in.Location,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tenant created", "tenant_id", t.ID, "segment", t.Segment)
	return t, nil
}

// Get fetches one tenant.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns tenants, optionally filtered by segment.
func (s *Service) List(ctx context.Context, segment string) ([]Tenant, error) {
	return s.repo.List(ctx, segment)
}

// Update edits tenant attributes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (*Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = in.Name
	t.Segment = in.Segment
	t.Location = in.Location
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a tenant without dependents.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tenant deleted", "tenant_id", id)
	return nil
}
