package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kesho/internal/clock"
	"kesho/internal/core"
)

func summaryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the month's budget against spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ov, err := a.service().Overview(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ov)
			}

			fmt.Fprintf(out, "%s  income %s  spent %s of %s (%d%%)\n\n",
				ov.Month, core.FormatKSh(ov.Income), core.FormatKSh(ov.TotalSpent),
				core.FormatKSh(ov.TotalBudget), ov.Percent)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tGROUP\tBUDGET\tSPENT\tREMAINING\t")
			for _, c := range ov.Categories {
				flag := ""
				if c.OverBudget {
					flag = "over"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Name, c.Group, core.FormatKSh(c.Budget), core.FormatKSh(c.Spent),
					core.FormatKSh(c.Remaining), flag)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	return cmd
}

func incomeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "income <amount>",
		Short: "Set monthly income and reallocate every budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseAmountToCents(args[0])
			if err != nil {
				return fmt.Errorf("income %q: %w", args[0], err)
			}
			result, err := a.service().SetIncome(cmd.Context(), core.Money{Cents: cents})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Income set to %s, %d budgets reallocated\n",
				core.FormatKSh(core.Money{Cents: cents}), len(result.Categories))
			if len(result.Skipped) > 0 {
				names := make([]string, len(result.Skipped))
				for i, g := range result.Skipped {
					names[i] = g.String()
				}
				fmt.Fprintf(out, "No categories in: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var date, note string
	cmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Record a transaction by hand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseAmountToCents(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}
			d := core.DateOf(clock.System{}.Now())
			if date != "" {
				if d, err = core.ParseDate(date); err != nil {
					return err
				}
			}
			tx, err := a.service().AddTransaction(cmd.Context(), args[0], core.Money{Cents: cents}, d, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s in %s on %s (%s)\n",
				core.FormatKSh(tx.Amount), args[0], tx.Date, tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "transaction date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	return cmd
}
