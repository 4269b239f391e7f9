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

	"github.com/bizzportal/bizzportal/internal/app"
	"github.com/bizzportal/bizzportal/internal/auth"
	"github.com/bizzportal/bizzportal/internal/dashboard"
	dashboardhttp "github.com/bizzportal/bizzportal/internal/dashboard/http"
	"github.com/bizzportal/bizzportal/internal/observability"
	"github.com/bizzportal/bizzportal/internal/platform/cache"
	"github.com/bizzportal/bizzportal/internal/records"
	recordhttp "github.com/bizzportal/bizzportal/internal/records/http"
	"github.com/bizzportal/bizzportal/internal/shared"
	"github.com/bizzportal/bizzportal/jobs"
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

	store, err := app.OpenRecords(ctx, cfg, logger)
	if err != nil {
		logger.Error("open records", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	recordCache := dashboard.NewCache(redisClient, cfg.RecordsCacheTTL)
	if err := recordCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("subscribe cache invalidation", slog.Any("error", err))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	var recordsHandler *recordhttp.Handler
	if store.Repository != nil {
		recordService := records.NewService(store.Repository, records.Invalidators{recordCache, jobClient}, logger)
		recordsHandler = recordhttp.NewHandler(logger, recordService)
	} else {
		logger.Info("record source is read-only, CRUD routes disabled", slog.String("source", cfg.RecordsSource))
	}

	fetcher := dashboard.NewFetcher(store.Source, recordCache, cfg.DashboardFetchTimeout)
	dashboardService := dashboard.NewService(fetcher, cfg.Thresholds(), logger).
		WithFailureObserver(metrics.DashboardFetchFailed)
	dashboardHandler := dashboardhttp.NewHandler(logger, dashboardService)

	sessionManager := shared.NewSessionManager(redisClient, "bizzportal_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	authService := auth.NewService(auth.Credentials{Username: cfg.AuthUsername, PasswordHash: cfg.AuthPasswordHash})
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	health := map[string]app.Pinger{
		"redis": app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}
	if store.Health != nil {
		health["records"] = store.Health
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		RecordsHandler:   recordsHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Health:           health,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("records", cfg.RecordsSource))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
