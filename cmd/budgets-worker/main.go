package main

import (
	"context"
	"os"

	"budgets/internal/amqp"
	"budgets/internal/backend"
	"budgets/internal/cli"
	"budgets/internal/config"
	"budgets/internal/log"
	"budgets/internal/metrics"
	"budgets/internal/services"
	"budgets/internal/sheets"
	gsheet "budgets/internal/sheets/google"
	mem "budgets/internal/sheets/memory"
	"budgets/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().With(log.FieldComponent, log.ComponentWorker)
	logger.Info("Starting budgets-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker consumes events; it never publishes them.
	bcfg.AMQPURL = ""

	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}
	defer be.Cleanup()

	mirror, err := newMirror(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	mirrorWorker := worker.NewMirrorWorker(be.Store, mirror, metrics.New())

	var consumer worker.EventConsumer
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
	} else {
		logger.Info("AMQP disabled - relying on periodic reconcile only")
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	err = worker.Run(ctx, mirrorWorker, consumer, worker.RunConfig{
		Reconcile: services.ReconcileProcessorConfig{
			Interval:   cfg.ReconcileInterval,
			RunOnStart: true,
		},
		StopTimeout: cfg.ShutdownTimeout,
	})
	if err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

// newMirror returns the Google Sheets mirror when a spreadsheet is
// configured and an in-memory mirror otherwise.
func newMirror(ctx context.Context, cfg *config.Config) (sheets.BudgetMirror, error) {
	if !cfg.SheetsEnabled() {
		return mem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
