package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute budget spent amounts",
	Long: `Recompute every budget's spent amount from the expense transactions of
its category and report how many budgets changed.

Example:
  budgetctl reconcile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			changed, err := s.acc.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budgets repaired: %d\n", changed)
			return nil
		})
	},
}
