package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendtracker/internal/config"
	"spendtracker/internal/events"
	applog "spendtracker/internal/log"
	"spendtracker/internal/remote"
	"spendtracker/internal/remote/sqlitestore"
	gsheet "spendtracker/internal/sheets/google"
	"spendtracker/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting spendtracker-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads confirmed records straight from the backing store.
	var store remote.TransactionStore
	repo, err := sqlitestore.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()
	store = repo

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(store, sheetsClient, sheetsClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err = events.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		func(msg *events.ChangeMessage) error {
			return mirror.Handle(ctx, msg)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
