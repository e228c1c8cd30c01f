package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kesho/internal/cli"
	"kesho/internal/config"
	apphttp "kesho/internal/http"
	"kesho/internal/log"
)

func main() {
	cfg, err := cli.LoadAndValidateConfig((*config.Config).Validate)
	if err != nil {
		logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp, nil)
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp, nil)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	ledger, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, ledger.Service,
		apphttp.WithReadiness(apphttp.ReadyFunc(ledger.Backend.Ready)),
		apphttp.WithLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kesho server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", ledger.Backend.Publisher != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
