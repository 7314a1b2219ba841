package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearConfirmed bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all data and reset ids",
	Long: `Remove every transaction, budget and asset, restore default settings and
restart id numbering at 1. Requires --yes.

Example:
  budgetctl export -o backup.json && budgetctl clear --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearConfirmed {
			return errors.New("refusing to clear without --yes")
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.ledger.ClearAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared successfully")
			return nil
		})
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearConfirmed, "yes", false, "confirm the deletion")
}
