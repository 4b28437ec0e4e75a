package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// IsOverdue is the single overdue predicate used by every aggregate view.
// A payment is overdue once its stored status says so, or once an unreviewed
// payment's overdue date has lapsed against the wall clock. All classification
// of payments must go through this function; duplicating the condition inline
// is what used to make counts drift between views.
func IsOverdue(p Payment, now time.Time) bool {
	return p.PaymentStatus == PaymentOverdue ||
		(p.ApprovalStatus == ApprovalPending && now.After(p.OverdueDate))
}

// OverdueStore is the persistence slice the synchronizer needs.
type OverdueStore interface {
	// MarkOverdue transitions every payment of the segment's tenants with
	// pending payment and approval status whose overdue date lies before now
	// to the overdue status, returning the number of rows changed.
	MarkOverdue(ctx context.Context, segment Segment, now time.Time) (int64, error)
}

// OverdueSynchronizer derives the overdue payment status from wall-clock
// time. It must run immediately before any aggregation read over payments.
// The update is monotonic (pending to overdue only) and idempotent, so
// repeated or concurrent runs converge without locking.
type OverdueSynchronizer struct {
	store  OverdueStore
	logger *slog.Logger
	now    func() time.Time
}

// NewOverdueSynchronizer wires the synchronizer.
func NewOverdueSynchronizer(store OverdueStore, logger *slog.Logger) *OverdueSynchronizer {
	return &OverdueSynchronizer{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sync applies the bulk correction for one segment.
func (s *OverdueSynchronizer) Sync(ctx context.Context, segment Segment) error {
	changed, err := s.store.MarkOverdue(ctx, segment, s.now())
	if err != nil {
		return fmt.Errorf("reports: sync overdue: %w", err)
	}
	if changed > 0 && s.logger != nil {
		s.logger.Info("marked lapsed payments overdue",
			slog.String("segment", string(segment)),
			slog.Int64("payments", changed))
	}
	return nil
}
