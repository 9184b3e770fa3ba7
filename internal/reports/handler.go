package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
)

// Handler serves fleet reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.ResourceReports, rbac.ActionRead))
		r.Get("/revenue", h.revenue)
	})
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := reportWindow(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	revenueOnly := false
	if access, ok := rbac.AccessFromContext(ctx); ok {
		revenueOnly = access.Directives.RevenueOnly
	}
	report, err := h.service.Revenue(ctx, from, to, revenueOnly)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("reports", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// reportWindow parses the from/to query parameters, defaulting to the
// trailing 30 days.
func reportWindow(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from timestamp", httpx.ErrValidation)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to timestamp", httpx.ErrValidation)
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be after from", httpx.ErrValidation)
	}
	return from, to, nil
}
