package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kesho/internal/cli"
	"kesho/internal/config"
	"kesho/internal/log"
	"kesho/internal/services"
)

// app holds what every subcommand runs against. The root command's pre-run
// hook opens the ledger; the caller closes it once Execute returns.
type app struct {
	logLevel string
	backend  string
	ledger   *cli.Ledger
}

func (a *app) service() *services.BudgetService {
	return a.ledger.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kesho",
		Short: "Household budget ledger with M-Pesa import",
		Long: `kesho keeps a monthly budget split into needs, wants, savings and buffer,
and records spending from pasted M-Pesa confirmation messages.

Configuration comes from the environment (or a .env file), the same as the
server: DATA_BACKEND, SQLITE_DB_PATH, KEYWORDS_FILE and AMQP_URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "data backend, overrides DATA_BACKEND")

	root.AddCommand(parseCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(summaryCmd(a))
	root.AddCommand(incomeCmd(a))
	root.AddCommand(addCmd(a))
	root.AddCommand(categoriesCmd(a))
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentCLI, cmd.ErrOrStderr())
	ledger, err := cli.OpenLedger(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	a.ledger = ledger
	return nil
}

func (a *app) close() error {
	if a.ledger == nil {
		return nil
	}
	err := a.ledger.Close()
	a.ledger = nil
	return err
}
