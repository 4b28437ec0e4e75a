// Package reporthttp serves the report bundle API.
package reporthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stayloft/stayloft/internal/platform/httpx"
	"github.com/stayloft/stayloft/internal/reports"
	"github.com/stayloft/stayloft/internal/shared"
)

// Service is the part of the report service the handlers consume.
type Service interface {
	GetOrCompute(ctx context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error)
	RecomputeAndCache(ctx context.Context, segment reports.Segment, kind reports.Kind, period, year int) (*reports.Bundle, error)
}

// Enqueuer submits a deferred refresh instead of recomputing in-request.
type Enqueuer func(ctx context.Context, kind string, period, year int) error

// Handler serves report endpoints.
type Handler struct {
	svc     Service
	enqueue Enqueuer
	logger  *slog.Logger
}

// NewHandler builds the report handler. The enqueuer may be nil, in which
// case async refresh requests are rejected.
func NewHandler(svc Service, enqueue Enqueuer, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, enqueue: enqueue, logger: logger}
}

// Mount registers report routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/{segment}/{kind}", h.get)
		r.Post("/{segment}/{kind}/refresh", h.refresh)
	})
}

type bundleQuery struct {
	segment reports.Segment
	kind    reports.Kind
	period  int
	year    int
}

func parseQuery(r *http.Request) (bundleQuery, error) {
	q := bundleQuery{
		segment: reports.Segment(chi.URLParam(r, "segment")),
		kind:    reports.Kind(chi.URLParam(r, "kind")),
	}
	var err error
	if q.period, err = strconv.Atoi(r.URL.Query().Get("period")); err != nil {
		return q, errors.New("period query parameter must be an integer")
	}
	if q.year, err = strconv.Atoi(r.URL.Query().Get("year")); err != nil {
		return q, errors.New("year query parameter must be an integer")
	}
	return q, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	bundle, err := h.svc.GetOrCompute(r.Context(), q.segment, q.kind, q.period, q.year)
	if err != nil {
		respondErr(w, err)
		return
	}

	// Tables can grow with the tenant count, so the row views paginate;
	// cards and the window travel with every page.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	view := paginateBundle(bundle, page, perPage)
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if h.enqueue == nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background refresh is not configured")
			return
		}
		if !q.kind.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", reports.ErrUnknownKind.Error())
			return
		}
		if err := h.enqueue(r.Context(), string(q.kind), q.period, q.year); err != nil {
			h.logger.Error("enqueue report refresh", "error", err)
			httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "could not schedule refresh")
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	bundle, err := h.svc.RecomputeAndCache(r.Context(), q.segment, q.kind, q.period, q.year)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bundle)
}

// pagedBundle is the wire shape of a paginated bundle.
type pagedBundle struct {
	Key               reports.Key                    `json:"key"`
	Window            reports.Window                 `json:"window"`
	GeneratedAt       time.Time                      `json:"generated_at"`
	TenantPerformance []reports.TenantPerformanceRow `json:"tenant_performance"`
	RoomUtilization   []reports.RoomUtilizationRow   `json:"room_utilization"`
	PaymentAnalytics  []reports.PaymentAnalyticsRow  `json:"payment_analytics"`
	FinancialSummary  []reports.FinancialSummaryRow  `json:"financial_summary"`
	Cards             reports.CardSet                `json:"cards"`
	Pagination        shared.Pagination              `json:"pagination"`
}

func paginateBundle(b *reports.Bundle, page, perPage int) pagedBundle {
	// The four views share one tenant axis, so they paginate in lockstep
	// on the longest one.
	longest := len(b.TenantPerformance)
	for _, n := range []int{len(b.RoomUtilization), len(b.PaymentAnalytics), len(b.FinancialSummary)} {
		if n > longest {
			longest = n
		}
	}
	p := shared.NewPagination(page, perPage, longest)

	return pagedBundle{
		Key:               b.Key,
		Window:            b.Window,
		GeneratedAt:       b.GeneratedAt,
		TenantPerformance: sliceRows(b.TenantPerformance, p),
		RoomUtilization:   sliceRows(b.RoomUtilization, p),
		PaymentAnalytics:  sliceRows(b.PaymentAnalytics, p),
		FinancialSummary:  sliceRows(b.FinancialSummary, p),
		Cards:             b.Cards,
		Pagination:        p,
	}
}

func sliceRows[T any](rows []T, p shared.Pagination) []T {
	from, to := p.Slice(len(rows))
	return rows[from:to]
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reports.ErrUnknownKind),
		errors.Is(err, reports.ErrUnknownSegment),
		errors.Is(err, reports.ErrInvalidPeriod):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
