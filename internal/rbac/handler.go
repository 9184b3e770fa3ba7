package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
)

// Handler exposes role management endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	gate     Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, gate Middleware) *Handler {
	return &Handler{logger: logger, registry: registry, gate: gate}
}

// MountRoutes registers role management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(ResourceRoles, ActionRead))
		r.Get("/", h.listRoles)
		r.Get("/{name}", h.getRole)
		r.Get("/{name}/permissions", h.getRolePermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(ResourceRoles, ActionCreate))
		r.Post("/", h.createRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(ResourceRoles, ActionUpdate))
		r.Put("/{name}", h.updateRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(ResourceRoles, ActionDelete))
		r.Delete("/{name}", h.deactivateRole)
	})
}

type permissionPayload struct {
	Resource   string          `json:"resource" validate:"required"`
	Actions    []string        `json:"actions" validate:"required,min=1"`
	Conditions map[string]bool `json:"conditions,omitempty"`
}

type createRolePayload struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Permissions []permissionPayload `json:"permissions" validate:"required,min=1,dive"`
	Interfaces  []string            `json:"interfaces"`
	Scope       string              `json:"scope"`
	ScopeRefs   []string            `json:"scopeRefs"`
}

type updateRolePayload struct {
	Description string              `json:"description"`
	Permissions []permissionPayload `json:"permissions" validate:"omitempty,dive"`
	Interfaces  []string            `json:"interfaces"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.registry.ListRoles(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.registry.GetRole(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) getRolePermissions(w http.ResponseWriter, r *http.Request) {
	role, err := h.registry.GetRole(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        role.Name,
		"permissions": role.Permissions,
		"interfaces":  role.Interfaces,
	})
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var payload createRolePayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	def := Role{
		Name:        payload.Name,
		Description: payload.Description,
		Permissions: toPermissions(payload.Permissions),
		Interfaces:  payload.Interfaces,
		Scope:       Scope(payload.Scope),
		ScopeRefs:   payload.ScopeRefs,
		IsActive:    true,
	}
	role, err := h.registry.UpsertRole(r.Context(), def)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var payload updateRolePayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.registry.GetRoleAny(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if payload.Description != "" {
		role.Description = payload.Description
	}
	if payload.Permissions != nil {
		role.Permissions = toPermissions(payload.Permissions)
	}
	if payload.Interfaces != nil {
		role.Interfaces = payload.Interfaces
	}
	updated, err := h.registry.UpsertRole(r.Context(), *role)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deactivateRole(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeactivateRole(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRoleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "role not found")
	case errors.Is(err, ErrInvalidDefinition):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrSystemRole), errors.Is(err, ErrRoleHeld):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("role registry", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func toPermissions(payload []permissionPayload) []Permission {
	perms := make([]Permission, 0, len(payload))
	for _, p := range payload {
		actions := make([]Action, 0, len(p.Actions))
		for _, a := range p.Actions {
			actions = append(actions, Action(a))
		}
		perms = append(perms, Permission{
			Resource:   Resource(p.Resource),
			Actions:    actions,
			Conditions: p.Conditions,
		})
	}
	return perms
}
