package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/stayloft/stayloft/internal/reports"
)

type refreshCall struct {
	segment reports.Segment
	kind    reports.Kind
	period  int
	year    int
}

type fakeReportService struct {
	calls   []refreshCall
	failFor reports.Segment
}

func (f *fakeReportService) RecomputeAndCache(_ context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error) {
	f.calls = append(f.calls, refreshCall{segment: segment, kind: kind, period: period, year: year})
	if f.failFor != "" && segment == f.failFor {
		return nil, errors.New("boom")
	}
	return &reports.Bundle{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRefreshTask(t *testing.T, payload ReportRefreshPayload) *asynq.Task {
	t.Helper()
	task, err := NewReportRefreshTask(payload)
	require.NoError(t, err)
	return task
}

func TestReportRefreshCoversEverySegment(t *testing.T) {
	svc := &fakeReportService{}
	job := NewReportRefreshJob(svc, reports.NewResolver(), discardLogger(), nil)

	task := newRefreshTask(t, ReportRefreshPayload{Kind: "monthly", Period: 3, Year: 2025})
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, svc.calls, len(reports.Segments()))
	for i, segment := range reports.Segments() {
		require.Equal(t, refreshCall{segment: segment, kind: reports.KindMonthly, period: 3, year: 2025}, svc.calls[i])
	}
}

func TestReportRefreshDefaultsToJustCompletedPeriod(t *testing.T) {
	svc := &fakeReportService{}
	job := NewReportRefreshJob(svc, reports.NewResolver(), discardLogger(), nil)

	// The resolver reads the wall clock, so derive the expectation the
	// same way the job does.
	cur, curYear := job.Resolver.Current(reports.KindMonthly)
	wantPeriod, wantYear := job.Resolver.Previous(reports.KindMonthly, cur, curYear)

	task := newRefreshTask(t, ReportRefreshPayload{Kind: "monthly"})
	require.NoError(t, job.Handle(context.Background(), task))

	require.NotEmpty(t, svc.calls)
	require.Equal(t, wantPeriod, svc.calls[0].period)
	require.Equal(t, wantYear, svc.calls[0].year)
}

func TestReportRefreshContinuesPastFailingSegment(t *testing.T) {
	svc := &fakeReportService{failFor: reports.Segments()[0]}
	job := NewReportRefreshJob(svc, reports.NewResolver(), discardLogger(), nil)

	task := newRefreshTask(t, ReportRefreshPayload{Kind: "weekly", Period: 10, Year: 2025})
	err := job.Handle(context.Background(), task)
	require.Error(t, err)

	// Every segment was still attempted.
	require.Len(t, svc.calls, len(reports.Segments()))
}

func TestReportRefreshSkipsRetryOnBadPayload(t *testing.T) {
	job := NewReportRefreshJob(&fakeReportService{}, reports.NewResolver(), discardLogger(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportRefresh, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	bad, merr := json.Marshal(ReportRefreshPayload{Kind: "quarterly"})
	require.NoError(t, merr)
	err = job.Handle(context.Background(), asynq.NewTask(TaskReportRefresh, bad))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeSyncer struct {
	segments []reports.Segment
	fail     bool
}

func (f *fakeSyncer) Sync(_ context.Context, segment reports.Segment) error {
	f.segments = append(f.segments, segment)
	if f.fail {
		return errors.New("db down")
	}
	return nil
}

func TestOverdueSweepCoversEverySegment(t *testing.T) {
	syncer := &fakeSyncer{}
	job := NewOverdueSweepJob(syncer, discardLogger(), nil)

	require.NoError(t, job.Handle(context.Background(), NewOverdueSweepTask()))
	require.Equal(t, reports.Segments(), syncer.segments)
}

func TestOverdueSweepReportsFailure(t *testing.T) {
	syncer := &fakeSyncer{fail: true}
	job := NewOverdueSweepJob(syncer, discardLogger(), nil)

	require.Error(t, job.Handle(context.Background(), NewOverdueSweepTask()))
	require.Equal(t, reports.Segments(), syncer.segments)
}

func TestReportRefreshJobWithClock(t *testing.T) {
	job := NewReportRefreshJob(&fakeReportService{}, reports.NewResolver(), discardLogger(), nil)
	fixed := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	job.WithClock(func() time.Time { return fixed })
	require.Equal(t, fixed, job.now())
}
