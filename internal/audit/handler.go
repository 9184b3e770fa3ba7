package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
)

// Handler serves the audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceAudit, rbac.ActionRead))
		r.Get("/", h.timeline)
	})
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := TimelineFilters{
		Role:     q.Get("role"),
		Resource: q.Get("resource"),
		Outcome:  q.Get("outcome"),
	}
	if raw := q.Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = parsed
		}
	}
	if raw := q.Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = parsed
		}
	}
	if raw := q.Get("page"); raw != "" {
		filters.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("page_size"); raw != "" {
		filters.PageSize, _ = strconv.Atoi(raw)
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("audit timeline", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
