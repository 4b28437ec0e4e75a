package payments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stayloft/stayloft/internal/platform/httpx"
)

type createRequest struct {
	TenantID string  `json:"tenant_id" validate:"required,uuid4"`
	MemberID string  `json:"member_id" validate:"required,uuid4"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	DueDate  string  `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Handler serves the payment HTTP API.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler builds the payment handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Mount registers payment routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	tenantID, _ := uuid.Parse(req.TenantID)
	memberID, _ := uuid.Parse(req.MemberID)
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)
	p, err := h.svc.Create(r.Context(), CreateInput{
		TenantID: tenantID,
		MemberID: memberID,
		Amount:   req.Amount,
		DueDate:  dueDate,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id query parameter required")
		return
	}
	items, err := h.svc.ListByTenant(r.Context(), tenantID, r.URL.Query().Get("approval_status"))
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed payment id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*Payment, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed payment id")
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyDecided):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
