package machines

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/internal/shared"
)

// Handler manages machine fleet endpoints. Single-machine routes use the
// machineID path parameter so the request gate can apply assignedOnly
// scoping before the handler runs.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers machine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceMachines, rbac.ActionRead))
		r.Get("/", h.listMachines)
		r.Get("/{machineID}", h.getMachine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceMachines, rbac.ActionCreate))
		r.Post("/", h.createMachine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceMachines, rbac.ActionUpdate))
		r.Put("/{machineID}", h.updateMachine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceMachines, rbac.ActionDelete))
		r.Delete("/{machineID}", h.deleteMachine)
	})
}

type machinePayload struct {
	Code     string `json:"code" validate:"required"`
	Location string `json:"location" validate:"required"`
	Region   string `json:"region" validate:"required"`
	Status   string `json:"status"`
}

func (h *Handler) listMachines(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.service.ListMachines(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"machines": fleet})
}

func (h *Handler) getMachine(w http.ResponseWriter, r *http.Request) {
	machine, err := h.service.GetMachine(r.Context(), chi.URLParam(r, "machineID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, machine)
}

func (h *Handler) createMachine(w http.ResponseWriter, r *http.Request) {
	var payload machinePayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	machine, err := h.service.CreateMachine(r.Context(), Machine{
		Code:     payload.Code,
		Location: payload.Location,
		Region:   payload.Region,
		Status:   Status(payload.Status),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, machine)
}

func (h *Handler) updateMachine(w http.ResponseWriter, r *http.Request) {
	var payload machinePayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	machine, err := h.service.UpdateMachine(r.Context(), Machine{
		ID:       chi.URLParam(r, "machineID"),
		Location: payload.Location,
		Region:   payload.Region,
		Status:   Status(payload.Status),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, machine)
}

func (h *Handler) deleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMachine(r.Context(), chi.URLParam(r, "machineID")); err != nil {
		h.fail(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: machine not found", httpx.ErrNotFound))
	case errors.Is(err, shared.ErrDuplicate):
		httpx.RespondError(w, fmt.Errorf("%w: machine code already registered", httpx.ErrDuplicate))
	default:
		if h.logger != nil {
			h.logger.Error("machines", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
