package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"conto/internal/amqp"
	"conto/internal/config"
	applog "conto/internal/log"
	"conto/internal/sheets"
	gsheet "conto/internal/sheets/google"
	mem "conto/internal/sheets/memory"
	"conto/internal/storage"
	"conto/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
		Handler:   applog.NewHandler(cfg.LogFormat, cfg.LogLevel),
	})
	applog.SetDefault(logger)

	logger.Info("Starting conto-worker",
		"export_backend", cfg.ExportBackend,
		"batch_size", cfg.ExportBatchSize,
		"interval", cfg.ExportInterval.String())

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exporter sheets.SplitExporter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Initialized Google Sheets exporter", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		exporter = mem.New()
		logger.Info("Initialized memory exporter")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter, cfg.ExportBatchSize)

	// Recover anything released while the worker was down before consuming.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	if err := exportWorker.Run(ctx, amqpClient, cfg.ExportInterval); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
