package rooms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stayloft/stayloft/internal/platform/httpx"
)

type roomRequest struct {
	TenantID        string  `json:"tenant_id" validate:"required,uuid4"`
	Name            string  `json:"name" validate:"required,max=40"`
	Capacity        int     `json:"capacity" validate:"required,gte=1,lte=12"`
	Rent            float64 `json:"rent" validate:"gte=0"`
	RecurringCharge float64 `json:"recurring_charge" validate:"gte=0"`
}

// Handler serves the room HTTP API.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler builds the room handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Mount registers room routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed tenant id")
		return
	}
	room, err := h.svc.Create(r.Context(), CreateInput{
		TenantID:        tenantID,
		Name:            req.Name,
		Capacity:        req.Capacity,
		Rent:            req.Rent,
		RecurringCharge: req.RecurringCharge,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, room)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id query parameter required")
		return
	}
	items, err := h.svc.ListByTenant(r.Context(), tenantID)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed room id")
		return
	}
	room, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, room)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed room id")
		return
	}
	var req roomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed tenant id")
		return
	}
	room, err := h.svc.Update(r.Context(), id, CreateInput{
		TenantID:        tenantID,
		Name:            req.Name,
		Capacity:        req.Capacity,
		Rent:            req.Rent,
		RecurringCharge: req.RecurringCharge,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, room)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed room id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrOccupied):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
