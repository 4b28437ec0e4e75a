package members

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
	TenantID string  `json:"tenant_id" validate:"required,uuid4"`
	RoomID   string  `json:"room_id" validate:"required,uuid4"`
	Name     string  `json:"name" validate:"required,max=120"`
	Phone    string  `json:"phone" validate:"max=20"`
	JoinDate string  `json:"join_date" validate:"required,datetime=2006-01-02"`
	Advance  float64 `json:"advance" validate:"gte=0"`
}

type moveRequest struct {
	RoomID string `json:"room_id" validate:"required,uuid4"`
}

type departRequest struct {
	DepartureDate string `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
}

// Handler serves the member HTTP API.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler builds the member handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// Mount registers member routes.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/members", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/move", h.move)
		r.Post("/{id}/depart", h.depart)
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
	roomID, _ := uuid.Parse(req.RoomID)
	joinDate, _ := time.Parse("2006-01-02", req.JoinDate)
	m, err := h.svc.Create(r.Context(), CreateInput{
		TenantID:      tenantID,
		RoomID:        roomID,
		Name:          req.Name,
		Phone:         req.Phone,
		JoinDate:      joinDate,
		Advance:       req.Advance,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id query parameter required")
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := h.svc.ListByTenant(r.Context(), tenantID, activeOnly)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed member id")
		return
	}
	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed member id")
		return
	}
	var req moveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	roomID, _ := uuid.Parse(req.RoomID)
	m, err := h.svc.MoveRoom(r.Context(), id, roomID)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) depart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed member id")
		return
	}
	var req departRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	var when time.Time
	if req.DepartureDate != "" {
		when, _ = time.Parse("2006-01-02", req.DepartureDate)
	}
	m, err := h.svc.Depart(r.Context(), id, when)
	if err != nil {
		respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrAlreadyDeparted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
