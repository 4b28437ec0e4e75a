package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stayloft/stayloft/internal/auth"
	"github.com/stayloft/stayloft/internal/expenses"
	"github.com/stayloft/stayloft/internal/members"
	"github.com/stayloft/stayloft/internal/observability"
	"github.com/stayloft/stayloft/internal/payments"
	reporthttp "github.com/stayloft/stayloft/internal/reports/http"
	"github.com/stayloft/stayloft/internal/rooms"
	"github.com/stayloft/stayloft/internal/tenants"
	"github.com/stayloft/stayloft/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	TenantHandler   *tenants.Handler
	RoomHandler     *rooms.Handler
	MemberHandler   *members.Handler
	PaymentHandler  *payments.Handler
	ExpenseHandler  *expenses.Handler
	ReportHandler   *reporthttp.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Stayloft defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		params.AuthHandler.Mount(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Use(params.AuthHandler.Middleware)
		}
		if params.TenantHandler != nil {
			params.TenantHandler.Mount(r)
		}
		if params.RoomHandler != nil {
			params.RoomHandler.Mount(r)
		}
		if params.MemberHandler != nil {
			params.MemberHandler.Mount(r)
		}
		if params.PaymentHandler != nil {
			params.PaymentHandler.Mount(r)
		}
		if params.ExpenseHandler != nil {
			params.ExpenseHandler.Mount(r)
		}
		if params.ReportHandler != nil {
			params.ReportHandler.Mount(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
