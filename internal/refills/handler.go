package refills

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/internal/shared"
)

// Handler manages refill job endpoints. Job routes are keyed by job id, so
// the machine a job belongs to is only known after the repository load; the
// handler re-checks assignment through the gate once it is.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers refill job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceRefills, rbac.ActionRead))
		r.Get("/", h.listJobs)
		r.Get("/{id}", h.getJob)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceRefills, rbac.ActionCreate))
		r.Post("/", h.createJob)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceRefills, rbac.ActionUpdate))
		r.Put("/{id}", h.updateJob)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceRefills, rbac.ActionAssign))
		r.Put("/{id}/assign", h.assignJob)
	})
}

type createJobPayload struct {
	MachineID    string     `json:"machineId" validate:"required"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	Notes        string     `json:"notes"`
}

type updateJobPayload struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type assignJobPayload struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var scopedTo []string
	if access, ok := rbac.AccessFromContext(ctx); ok && access.Decision.Conditions[rbac.CondAssignedOnly] {
		if principal := shared.PrincipalFromContext(ctx); principal != nil {
			scopedTo = principal.AssignedMachines
		}
	}
	jobs, err := h.service.ListJobs(ctx, scopedTo)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	job, err := h.service.GetJob(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.gate.CheckAssigned(ctx, job.MachineID); err != nil {
		h.denyScope(w, rbac.ActionRead)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload createJobPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.gate.CheckAssigned(ctx, payload.MachineID); err != nil {
		h.denyScope(w, rbac.ActionCreate)
		return
	}
	var scheduledFor time.Time
	if payload.ScheduledFor != nil {
		scheduledFor = *payload.ScheduledFor
	}
	job, err := h.service.CreateJob(ctx, payload.MachineID, scheduledFor, payload.Notes)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload updateJobPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	job, err := h.service.GetJob(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.gate.CheckAssigned(ctx, job.MachineID); err != nil {
		h.denyScope(w, rbac.ActionUpdate)
		return
	}
	updated, err := h.service.UpdateJob(ctx, id, Status(payload.Status), payload.Notes)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) assignJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload assignJobPayload
	if err := httpx.DecodeValid(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	job, err := h.service.AssignJob(ctx, chi.URLParam(r, "id"), payload.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) denyScope(w http.ResponseWriter, action rbac.Action) {
	httpx.Problem(w, http.StatusForbidden, "Access Denied",
		fmt.Sprintf("required permission: %s on %s", action, rbac.ResourceRefills))
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: refill job not found", httpx.ErrNotFound))
	default:
		if h.logger != nil {
			h.logger.Error("refills", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
