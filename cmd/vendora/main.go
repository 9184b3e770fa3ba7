package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/vendora/vendora/internal/app"
	"github.com/vendora/vendora/internal/audit"
	"github.com/vendora/vendora/internal/auth"
	"github.com/vendora/vendora/internal/machines"
	"github.com/vendora/vendora/internal/observability"
	"github.com/vendora/vendora/internal/platform/cache"
	"github.com/vendora/vendora/internal/platform/db"
	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/internal/refills"
	"github.com/vendora/vendora/internal/reports"
	"github.com/vendora/vendora/internal/users"
	"github.com/vendora/vendora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	// Role registry with a read-through cache in front of Postgres.
	usersRepo := users.NewRepository(pool)
	roleStore := rbac.NewCachedStore(rbac.NewRepository(pool), redisClient, cfg.RoleCacheTTL, logger)
	registry := rbac.NewRegistry(roleStore, usersRepo, logger)

	if err := registry.Reseed(ctx, rbac.SystemRoleDefinitions()); err != nil {
		logger.Error("seed system roles", slog.Any("error", err))
		os.Exit(1)
	}

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	auditRepo := audit.NewRepository(pool)
	recorder := audit.NewAsyncRecorder(queueClient, logger, auditRepo.Insert)

	gate := rbac.Middleware{
		Engine:   rbac.NewEngine(registry),
		Enforcer: rbac.NewEnforcer(logger),
		Audit:    recorder,
		Metrics:  rbac.NewMetrics(metrics.Registerer()),
		Logger:   logger,
	}

	tokens := auth.NewTokenManager(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	rolesHandler := rbac.NewHandler(logger, registry, gate)
	usersService := users.NewService(usersRepo, registry)
	usersHandler := users.NewHandler(logger, usersService, gate)

	machinesRepo := machines.NewRepository(pool)
	machinesHandler := machines.NewHandler(logger, machines.NewService(machinesRepo), gate)

	refillsRepo := refills.NewRepository(pool)
	refillsHandler := refills.NewHandler(logger, refills.NewService(refillsRepo), gate)

	reportsRepo := reports.NewRepository(pool)
	reportsHandler := reports.NewHandler(logger, reports.NewService(reportsRepo), gate)

	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		TokenManager:    tokens,
		AuthHandler:     authHandler,
		RolesHandler:    rolesHandler,
		UsersHandler:    usersHandler,
		MachinesHandler: machinesHandler,
		RefillsHandler:  refillsHandler,
		ReportsHandler:  reportsHandler,
		AuditHandler:    auditHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	}, app.MiddlewareConfig{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
