package members

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service carries member business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a member service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create onboards a member into a room. The repository enforces room
// capacity atomically with the insert.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Member, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m := &Member{
		ID:        uuid.New(),
		TenantID:  in.TenantID,
		RoomID:    in.RoomID,
		Name:      in.Name,
		Phone:     in.Phone,
		JoinDate:  in.JoinDate.UTC(),
		Advance:   in.Advance,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("member onboarded", "member_id", m.ID, "tenant_id", m.TenantID, "room_id", m.RoomID)
	return m, nil
}

// Get fetches one member.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTenant returns the members of a tenant.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Member, error) {
	return s.repo.ListByTenant(ctx, tenantID, activeOnly)
}

// MoveRoom reassigns an active member to another room.
func (s *Service) MoveRoom(ctx context.Context, id, roomID uuid.UUID) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Active() {
		return nil, ErrAlreadyDeparted
	}
	if m.RoomID == roomID {
		return m, nil
	}
	if err := s.repo.AssignRoom(ctx, m.ID, roomID); err != nil {
		return nil, err
	}
	prev := m.RoomID
	m.RoomID = roomID
	s.logger.Info("member moved", "member_id", m.ID, "from_room", prev, "to_room", roomID)
	return m, nil
}

// Depart records a member leaving. The departure date ends the stay;
// reporting keeps counting the member for windows up to that date.
func (s *Service) Depart(ctx context.Context, id uuid.UUID, when time.Time) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Active() {
		return nil, ErrAlreadyDeparted
	}
	if when.IsZero() {
		when = s.now()
	}
	d := when.UTC()
	m.DepartureDate = &d
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("member departed", "member_id", m.ID, "departure_date", d)
	return m, nil
}
