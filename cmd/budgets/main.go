package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"budgets/internal/backend"
	"budgets/internal/cli"
	apphttp "budgets/internal/http"
	"budgets/internal/log"
	"budgets/internal/metrics"
	"budgets/internal/notify"
	"budgets/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}
	logger.Info("Initialized backend", "backend", bcfg.Type, "events", be.Publisher != nil)

	m := metrics.New()

	svc := services.NewBudgetService(be.Store, notify.ContextNotifier{Logger: logger}, be.Publisher, m)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Pinger:             be.Pinger,
		Metrics:            m,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             log.New(log.Config{Component: log.ComponentHTTP, Handler: logger.Handler()}),
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting budgets server", "port", cfg.Port, "backend", bcfg.Type)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = be.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
