package reporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stayloft/stayloft/internal/reports"
)

type fakeService struct {
	bundle        *reports.Bundle
	err           error
	recomputed    int
	lastSegment   reports.Segment
	lastKind      reports.Kind
	lastPeriod    int
	lastYear      int
}

func (f *fakeService) GetOrCompute(_ context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error) {
	f.lastSegment, f.lastKind, f.lastPeriod, f.lastYear = segment, kind, period, year
	return f.bundle, f.err
}

func (f *fakeService) RecomputeAndCache(_ context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error) {
	f.recomputed++
	f.lastSegment, f.lastKind, f.lastPeriod, f.lastYear = segment, kind, period, year
	return f.bundle, f.err
}

func sampleBundle(rows int) *reports.Bundle {
	b := &reports.Bundle{
		Key: reports.Key{
			Segment: reports.SegmentMens,
			Kind:    reports.KindMonthly,
			Period:  3,
			Year:    2025,
		},
		GeneratedAt:       time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		TenantPerformance: make([]reports.TenantPerformanceRow, rows),
		RoomUtilization:   make([]reports.RoomUtilizationRow, rows),
		PaymentAnalytics:  make([]reports.PaymentAnalyticsRow, rows),
		FinancialSummary:  make([]reports.FinancialSummaryRow, rows),
	}
	for i := range b.TenantPerformance {
		b.TenantPerformance[i].TenantName = "PG " + string(rune('A'+i))
	}
	return b
}

func newTestRouter(svc Service, enqueue Enqueuer) *chi.Mux {
	h := NewHandler(svc, enqueue, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func TestGetBundlePaginatesRows(t *testing.T) {
	svc := &fakeService{bundle: sampleBundle(5)}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/mens/monthly?period=3&year=2025&page=2&per_page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, reports.SegmentMens, svc.lastSegment)
	require.Equal(t, reports.KindMonthly, svc.lastKind)

	var body pagedBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.TenantPerformance, 2)
	require.Equal(t, "PG C", body.TenantPerformance[0].TenantName)
	require.Equal(t, 5, body.Pagination.Total)
	require.Equal(t, 3, body.Pagination.TotalPages)
}

func TestGetBundleRejectsMissingPeriod(t *testing.T) {
	router := newTestRouter(&fakeService{bundle: sampleBundle(1)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/mens/monthly?year=2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBundleMapsDomainErrors(t *testing.T) {
	svc := &fakeService{err: reports.ErrUnknownSegment}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/unisex/monthly?period=3&year=2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRecomputesSynchronously(t *testing.T) {
	svc := &fakeService{bundle: sampleBundle(1)}
	router := newTestRouter(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/reports/womens/weekly/refresh?period=10&year=2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.recomputed)
	require.Equal(t, reports.SegmentWomens, svc.lastSegment)
}

func TestRefreshAsyncEnqueues(t *testing.T) {
	var gotKind string
	enqueue := func(_ context.Context, kind string, period, year int) error {
		gotKind = kind
		return nil
	}
	svc := &fakeService{bundle: sampleBundle(1)}
	router := newTestRouter(svc, enqueue)

	req := httptest.NewRequest(http.MethodPost, "/reports/mens/weekly/refresh?period=10&year=2025&async=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "weekly", gotKind)
	require.Zero(t, svc.recomputed)
}

func TestRefreshAsyncWithoutEnqueuer(t *testing.T) {
	router := newTestRouter(&fakeService{bundle: sampleBundle(1)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/reports/mens/weekly/refresh?period=10&year=2025&async=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefreshAsyncEnqueueFailure(t *testing.T) {
	enqueue := func(context.Context, string, int, int) error {
		return errors.New("redis down")
	}
	router := newTestRouter(&fakeService{bundle: sampleBundle(1)}, enqueue)

	req := httptest.NewRequest(http.MethodPost, "/reports/mens/weekly/refresh?period=10&year=2025&async=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
