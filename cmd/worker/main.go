package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vendora/vendora/internal/app"
	"github.com/vendora/vendora/internal/audit"
	jobmetrics "github.com/vendora/vendora/internal/jobs"
	"github.com/vendora/vendora/internal/platform/db"
	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	auditRepo := audit.NewRepository(pool)
	auditHandler := jobs.NewAuditRecordHandler(func(ctx context.Context, payload jobs.AuditRecordPayload) error {
		tracker := metrics.Track("audit_record")
		return tracker.End(auditRepo.Insert(ctx, audit.Entry{
			At:          payload.At,
			PrincipalID: payload.PrincipalID,
			Role:        payload.Role,
			Resource:    payload.Resource,
			Action:      payload.Action,
			Outcome:     payload.Outcome,
			Reason:      payload.Reason,
		}))
	})

	// Periodic sweep over stored role definitions. A definition that no
	// longer validates means someone bypassed the registry write path.
	roleStore := rbac.NewRepository(pool)
	integrityHandler := jobs.NewRegistryIntegrityHandler(func(ctx context.Context) error {
		tracker := metrics.Track("registry_integrity")
		return tracker.End(rbac.CheckStoredRoles(ctx, roleStore, logger))
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAuditRecord, Handler: auditHandler},
			{Type: jobs.TaskTypeRegistryIntegrity, Handler: integrityHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 2 * * *", Task: jobs.NewRegistryIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
