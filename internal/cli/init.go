// Package cli provides common process initialization utilities shared by
// cmd/kesho, cmd/kesho-worker and cmd/kesho-cli.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"kesho/internal/backend"
	"kesho/internal/config"
	"kesho/internal/log"
	"kesho/internal/notify"
	"kesho/internal/services"
)

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default. An unknown level falls back to info with a warning.
func SetupLogger(level, component string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	if out != nil {
		cfg.Output = out
	}
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadAndValidateConfig loads configuration and validates it with validate,
// which defaults to Config.Validate.
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShutdownContext is cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Ledger is a loaded budget service together with what it runs on.
type Ledger struct {
	Service *services.BudgetService
	Backend *backend.BackendResult
}

// Close releases the backend.
func (l *Ledger) Close() error {
	if l.Backend.Cleanup == nil {
		return nil
	}
	return l.Backend.Cleanup()
}

// OpenLedger builds the backend the config names, loads the categoriser
// table and returns a service whose ledger has been read from the store.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger, extra ...services.Option) (*Ledger, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	ledger := &Ledger{Backend: result}

	categorizer, err := notify.Load(cfg.KeywordsFile)
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("load keyword table: %w", err)
	}

	opts := append(result.ServiceOptions(),
		services.WithCategorizer(categorizer),
		services.WithLogger(logger.WithComponent(log.ComponentLedger)))
	opts = append(opts, extra...)
	ledger.Service = services.NewBudgetService(result.Store, opts...)

	if err := ledger.Service.Load(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}
