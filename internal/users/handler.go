package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
)

// Handler manages user account endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceUsers, rbac.ActionRead))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceUsers, rbac.ActionCreate))
		r.Post("/", h.createUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceUsers, rbac.ActionUpdate))
		r.Put("/{id}", h.updateUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceUsers, rbac.ActionDelete))
		r.Delete("/{id}", h.deactivateUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceUsers, rbac.ActionAssign))
		r.Put("/{id}/machines", h.assignMachines)
	})
}

type createUserPayload struct {
	Email           string   `json:"email" validate:"required,email"`
	Name            string   `json:"name" validate:"required"`
	Password        string   `json:"password" validate:"required,min=10"`
	Role            string   `json:"role" validate:"required"`
	AssignedRegions []string `json:"assignedRegions"`
}

type updateUserPayload struct {
	Name            string   `json:"name" validate:"required"`
	Role            string   `json:"role" validate:"required"`
	AssignedRegions []string `json:"assignedRegions"`
	IsActive        *bool    `json:"isActive"`
}

type assignMachinesPayload struct {
	Machines []string `json:"machines" validate:"required"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), User{
		Email:           payload.Email,
		Name:            payload.Name,
		Role:            payload.Role,
		AssignedRegions: payload.AssignedRegions,
	}, payload.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload updateUserPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	current, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	current.Name = payload.Name
	current.Role = payload.Role
	current.AssignedRegions = payload.AssignedRegions
	if payload.IsActive != nil {
		current.IsActive = *payload.IsActive
	}
	updated, err := h.service.UpdateUser(r.Context(), *current)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) assignMachines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload assignMachinesPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.AssignMachines(r.Context(), id, payload.Machines)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeactivateUser(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Error("users", slog.Any("error", err))
	}
	httpx.RespondError(w, mapErr(err))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return 0, false
	}
	return id, true
}
