package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"koopera/internal/amqp"
	"koopera/internal/config"
	"koopera/internal/export"
	gsheet "koopera/internal/export/google"
	exportmem "koopera/internal/export/memory"
	applog "koopera/internal/log"
	"koopera/internal/storage"
	"koopera/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting report-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the same SQLite ledger the server writes.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	writer := newWriter(cfg, logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reportWorker := worker.NewReportWorker(repo, writer)

	// Export a fresh statement on startup so a restart never leaves a stale
	// block behind.
	if err := reportWorker.RefreshStatement(ctx); err != nil {
		logger.Error("Startup statement export failed", "error", err)
		// Don't exit - continue with normal operation
	}

	go func() {
		err := amqpClient.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
			return reportWorker.HandleLedgerEvent(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	// Periodic refresh catches events lost while the broker or worker was
	// down.
	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := reportWorker.RefreshStatement(ctx); err != nil {
					logger.Error("Periodic statement export failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker shutdown complete")
}

// newWriter picks the Google Sheets writer when a spreadsheet is configured
// and falls back to the in-memory writer otherwise.
func newWriter(cfg *config.Config, logger *applog.Logger) export.ReportWriter {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return exportmem.New()
	}

	client, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
