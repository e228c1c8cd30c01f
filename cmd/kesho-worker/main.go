package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kesho/internal/amqp"
	"kesho/internal/cli"
	"kesho/internal/clock"
	"kesho/internal/config"
	"kesho/internal/log"
	"kesho/internal/sheets"
	gsheet "kesho/internal/sheets/google"
	mem "kesho/internal/sheets/memory"
	"kesho/internal/storage"
	"kesho/internal/worker"
)

// refreshInterval rewrites the report even without messages, which also
// rolls the tab over when a new month starts.
const refreshInterval = time.Hour

func main() {
	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	if err != nil {
		logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker, nil)
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker, nil)
	logger.Info("Starting kesho-worker", log.FieldOperation, log.OpStartup)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var writer sheets.ReportWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled, reports kept in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := worker.NewReportWorker(repo, writer, clock.System{})

	// A report missed while the worker was down is rebuilt here.
	if err := reports.Refresh(ctx); err != nil {
		logger.Error("Startup report refresh failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeLedgerChanged(gctx, reports.HandleLedgerChanged)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := reports.Refresh(gctx); err != nil {
					logger.Error("Periodic report refresh failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", "last_revision", reports.LastRevision())
}
