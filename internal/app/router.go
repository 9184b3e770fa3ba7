package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vendora/vendora/internal/audit"
	"github.com/vendora/vendora/internal/auth"
	"github.com/vendora/vendora/internal/machines"
	"github.com/vendora/vendora/internal/observability"
	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/internal/refills"
	"github.com/vendora/vendora/internal/reports"
	"github.com/vendora/vendora/internal/users"
	"github.com/vendora/vendora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config *Config

	TokenManager *auth.TokenManager

	AuthHandler     *auth.Handler
	RolesHandler    *rbac.Handler
	UsersHandler    *users.Handler
	MachinesHandler *machines.Handler
	RefillsHandler  *refills.Handler
	ReportsHandler  *reports.Handler
	AuditHandler    *audit.Handler
	JobHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams, mwCfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(mwCfg) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires an authenticated principal.
	r.Group(func(r chi.Router) {
		r.Use(auth.Principal(params.TokenManager, mwCfg.Logger))

		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.MachinesHandler != nil {
			r.Route("/machines", params.MachinesHandler.MountRoutes)
		}
		if params.RefillsHandler != nil {
			r.Route("/refills", params.RefillsHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
