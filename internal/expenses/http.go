package expenses

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stayloft/stayloft/internal/platform/httpx"
)

type createRequest struct {
	TenantID    string  `json:"tenant_id" validate:"required,uuid4"`
	Direction   string  `json:"direction" validate:"required,oneof=cash_in cash_out"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required,max=300"`
	EntryDate   string  `json:"entry_date" validate:"required,datetime=2006-01-02"`
}

// Handler serves the ledger HTTP API.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler builds the ledger handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Mount registers ledger routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
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
	entryDate, _ := time.Parse("2006-01-02", req.EntryDate)
	e, err := h.svc.Create(r.Context(), CreateInput{
		TenantID:    tenantID,
		Direction:   req.Direction,
		Amount:      req.Amount,
		Description: req.Description,
		EntryDate:   entryDate,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id query parameter required")
		return
	}
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		from, _ = time.Parse("2006-01-02", v)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, _ = time.Parse("2006-01-02", v)
	}
	items, err := h.svc.ListByTenant(r.Context(), tenantID, from, to)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed entry id")
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed entry id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.RespondError(w, err)
}
