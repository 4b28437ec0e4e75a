package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Repository is the data access surface the orchestrator depends on.
type Repository interface {
	OverdueStore
	CacheStore
	// SegmentSnapshot loads the segment's tenants with their rooms, members
	// and in-window payments (creation time or due date inside the window,
	// both ends inclusive).
	SegmentSnapshot(ctx context.Context, segment Segment, w Window) ([]TenantData, error)
	// ExpenseTotals sums the segment's cash movements dated inside the window.
	ExpenseTotals(ctx context.Context, segment Segment, w Window) (ExpenseTotals, error)
}

// Service is the report orchestrator: the single entry point composing period
// resolution, overdue synchronisation, aggregation, trends and the cache.
// It is stateless across calls and safe to run on multiple instances.
type Service struct {
	repo     Repository
	cache    *Cache
	resolver *Resolver
	sync     *OverdueSynchronizer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the orchestrator.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    NewCache(repo),
		resolver: NewResolver(),
		sync:     NewOverdueSynchronizer(repo, logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCompute is the read path. Completed periods are served from the cache
// when a bundle exists; everything else computes live. The read path never
// writes the cache, so a completed period without a cached row recomputes on
// every call until the write path runs.
func (s *Service) GetOrCompute(ctx context.Context, segment Segment, kind Kind, period, year int) (*Bundle, error) {
	key, w, err := s.resolve(segment, kind, period, year)
	if err != nil {
		return nil, err
	}
	if !s.resolver.IsCurrent(kind, period, year) {
		b, err := s.cache.Get(ctx, key)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			return nil, err
		}
	}
	return s.compute(ctx, key, w)
}

// RecomputeAndCache is the write path: it recomputes the bundle
// unconditionally and overwrites the cached row. Used by the scheduled
// weekly/monthly jobs and by manual operator backfills.
func (s *Service) RecomputeAndCache(ctx context.Context, segment Segment, kind Kind, period, year int) (*Bundle, error) {
	key, w, err := s.resolve(segment, kind, period, year)
	if err != nil {
		return nil, err
	}
	b, err := s.compute(ctx, key, w)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) resolve(segment Segment, kind Kind, period, year int) (Key, Window, error) {
	if !segment.Valid() {
		return Key{}, Window{}, ErrUnknownSegment
	}
	w, err := s.resolver.Range(kind, period, year)
	if err != nil {
		return Key{}, Window{}, err
	}
	return Key{Segment: segment, Kind: kind, Period: period, Year: year}, w, nil
}

// compute runs the overdue sync, then aggregates the current and previous
// windows. The previous window is always recomputed live; its completed
// cached counterpart is deliberately not consulted so the trend inputs come
// from one consistent read. The two windows share no state and run
// concurrently. A sync commit may land between the two reads, which is the
// accepted narrow inconsistency: corrections only ever move payments in one
// direction.
func (s *Service) compute(ctx context.Context, key Key, w Window) (*Bundle, error) {
	if err := s.sync.Sync(ctx, key.Segment); err != nil {
		return nil, err
	}

	prevPeriod, prevYear := s.resolver.Previous(key.Kind, key.Period, key.Year)
	prevWindow, err := s.resolver.Range(key.Kind, prevPeriod, prevYear)
	if err != nil {
		return nil, fmt.Errorf("reports: resolve previous window: %w", err)
	}

	var (
		data     []TenantData
		expenses ExpenseTotals
		prev     CardValues
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if data, err = s.repo.SegmentSnapshot(gctx, key.Segment, w); err != nil {
			return err
		}
		expenses, err = s.repo.ExpenseTotals(gctx, key.Segment, w)
		return err
	})
	g.Go(func() error {
		prevData, err := s.repo.SegmentSnapshot(gctx, key.Segment, prevWindow)
		if err != nil {
			return err
		}
		prevExpenses, err := s.repo.ExpenseTotals(gctx, key.Segment, prevWindow)
		if err != nil {
			return err
		}
		prev = BuildCardValues(prevData, prevExpenses, prevWindow)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reports: load segment %s: %w", key.Segment, err)
	}

	now := s.now()
	return &Bundle{
		Key:               key,
		Window:            w,
		GeneratedAt:       now,
		TenantPerformance: BuildTenantPerformance(data, w, now),
		RoomUtilization:   BuildRoomUtilization(data, w, key.Kind),
		PaymentAnalytics:  BuildPaymentAnalytics(data, w, now),
		FinancialSummary:  BuildFinancialSummary(data, w, now),
		Cards:             BuildCardSet(BuildCardValues(data, expenses, w), prev),
	}, nil
}
