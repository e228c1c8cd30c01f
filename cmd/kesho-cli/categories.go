package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kesho/internal/core"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and manage budget categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := a.service().State(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGROUP\tBUDGET\tTRANSACTIONS")
			for _, c := range state.Categories {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.Name, c.Group, core.FormatKSh(c.Budget), len(c.Transactions))
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(addCategoryCmd(a))
	cmd.AddCommand(removeCategoryCmd(a))
	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <group>",
		Short: "Add an empty category to needs, wants, savings or buffer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := core.ParseGroup(args[1])
			if err != nil {
				return fmt.Errorf("group %q: %w", args[1], err)
			}
			c, err := a.service().AddCategory(cmd.Context(), args[0], group)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", c.Name, c.Group)
			return nil
		},
	}
}

func removeCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a category and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.service().RemoveCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s and %d transactions\n", c.Name, len(c.Transactions))
			return nil
		},
	}
}
