package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kesho/internal/core"
	"kesho/internal/services"
)

func parseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <message>",
		Short: "Show what an M-Pesa message would record",
		Long:  `Parse a pasted M-Pesa confirmation and show the amount, payee, date and inferred category. The ledger is not changed.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, ok, err := a.service().PreviewNotification(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				return services.ErrNoNotificationMatch
			}
			printPreview(cmd, preview)
			if !preview.CategoryExists {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %q does not exist; import will fail until it is added.\n", preview.Category)
			}
			return nil
		},
	}
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <message>",
		Short: "Record an M-Pesa message as a transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, tx, err := a.service().CommitNotification(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printPreview(cmd, preview)
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction %s\n", tx.ID)
			return nil
		},
	}
}

func printPreview(cmd *cobra.Command, p services.NotificationPreview) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Amount:   %s\n", core.FormatKSh(p.Amount))
	fmt.Fprintf(out, "Payee:    %s\n", p.Payee)
	fmt.Fprintf(out, "Date:     %s\n", p.Date)
	fmt.Fprintf(out, "Category: %s\n", p.Category)
}
