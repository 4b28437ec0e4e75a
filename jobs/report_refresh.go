package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stayloft/stayloft/internal/jobs"
	"github.com/stayloft/stayloft/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportService describes the behaviour required to rebuild cached bundles.
type ReportService interface {
	RecomputeAndCache(ctx context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error)
}

// OverdueSyncer flips lapsed pending payments for one segment.
type OverdueSyncer interface {
	Sync(ctx context.Context, segment reports.Segment) error
}

// ReportRefreshJob recomputes and caches report bundles for every segment.
type ReportRefreshJob struct {
	Service  ReportService
	Resolver *reports.Resolver
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewReportRefreshJob constructs the job handler.
func NewReportRefreshJob(service ReportService, resolver *reports.Resolver, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportRefreshJob {
	return &ReportRefreshJob{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the report refresh job. When the payload names no period,
// the period immediately before the current one is refreshed; that is the
// period the cron fires for right after it completes.
func (j *ReportRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil || j.Resolver == nil {
		return errors.New("report refresh: dependencies not configured")
	}
	var payload ReportRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	kind := reports.Kind(payload.Kind)
	if !kind.Valid() {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	period, year := payload.Period, payload.Year
	if period == 0 {
		cur, curYear := j.Resolver.Current(kind)
		period, year = j.Resolver.Previous(kind, cur, curYear)
	}

	start := j.now()
	refreshed := 0
	for _, segment := range reports.Segments() {
		if _, err := j.Service.RecomputeAndCache(ctx, segment, kind, period, year); err != nil {
			// Keep going so one bad segment does not starve the rest;
			// the task fails afterwards and retries.
			resultErr = err
			j.log().Error("recompute bundle",
				slog.String("segment", string(segment)),
				slog.String("kind", string(kind)),
				slog.Int("period", period),
				slog.Int("year", year),
				slog.Any("error", err))
			continue
		}
		refreshed++
	}

	j.log().Info("refreshed report bundles",
		slog.String("kind", string(kind)),
		slog.Int("period", period),
		slog.Int("year", year),
		slog.Int("segments", refreshed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportRefreshJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportRefreshJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportRefresh))
	}
	return slog.Default().With(slog.String("job", TaskReportRefresh))
}

func (j *ReportRefreshJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ReportRefreshJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}

// OverdueSweepJob runs the overdue status sweep for every segment.
type OverdueSweepJob struct {
	Syncer  OverdueSyncer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOverdueSweepJob constructs the sweep handler.
func NewOverdueSweepJob(syncer OverdueSyncer, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueSweepJob {
	return &OverdueSweepJob{Syncer: syncer, Logger: logger, Metrics: metrics}
}

// Handle executes the overdue sweep.
func (j *OverdueSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Syncer == nil {
		return errors.New("overdue sweep: dependencies not configured")
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskOverdueSweep)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskOverdueSweep))

	swept := 0
	for _, segment := range reports.Segments() {
		if err := j.Syncer.Sync(ctx, segment); err != nil {
			resultErr = err
			logger.Error("overdue sweep", slog.String("segment", string(segment)), slog.Any("error", err))
			continue
		}
		swept++
	}
	logger.Info("overdue sweep finished", slog.Int("segments", swept))
	return resultErr
}
