package expenses

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service carries ledger business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a ledger service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create records a cash movement.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Entry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := &Entry{
		ID:          uuid.New(),
		TenantID:    in.TenantID,
		Direction:   in.Direction,
		Amount:      in.Amount,
		Description: in.Description,
		EntryDate:   in.EntryDate.UTC(),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("ledger entry recorded", "entry_id", e.ID, "direction", e.Direction, "amount", e.Amount)
	return e, nil
}

// Get fetches one entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTenant returns a tenant's ledger, optionally bounded by dates.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Entry, error) {
	return s.repo.ListByTenant(ctx, tenantID, from, to)
}

// Delete removes a mistaken entry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ledger entry deleted", "entry_id", id)
	return nil
}
