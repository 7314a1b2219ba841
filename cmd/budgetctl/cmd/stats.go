package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/core"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display current-month statistics",
	Long: `Display entity counts, this month's totals, budget usage and the
financial health score.

Example:
  budgetctl stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			snap, err := s.ledger.Export(ctx)
			if err != nil {
				return err
			}
			writeStats(cmd.OutOrStdout(), snap, analytics.New(time.Now))
			return nil
		})
	},
}

func writeStats(w io.Writer, snap core.Snapshot, agg *analytics.Aggregator) {
	totals := agg.MonthlyTotals(snap.Transactions)
	health := agg.Health(snap.Transactions, snap.Budgets)

	fmt.Fprintln(w, "\n=== BudgetBuddy Statistics ===")
	fmt.Fprintf(w, "Transactions:   %d\n", len(snap.Transactions))
	fmt.Fprintf(w, "Budgets:        %d\n", len(snap.Budgets))
	fmt.Fprintf(w, "Assets:         %d\n", len(snap.Assets))
	fmt.Fprintf(w, "Currency:       %s\n", snap.Settings.Currency)

	fmt.Fprintln(w, "\n--- This month ---")
	fmt.Fprintf(w, "Income:         %s\n", totals.TotalIncome)
	fmt.Fprintf(w, "Expenses:       %s\n", totals.TotalExpenses)
	fmt.Fprintf(w, "Net savings:    %s\n", totals.NetSavings)

	if statuses := agg.BudgetStatus(snap.Budgets); len(statuses) > 0 {
		fmt.Fprintln(w, "\n--- Budgets ---")
		for _, b := range statuses {
			fmt.Fprintf(w, "%-14s %s / %s (%.0f%%)\n", b.Category, b.Spent, b.Amount, b.PercentageUsed)
		}
	}

	fmt.Fprintf(w, "\nHealth score:   %d (%s)\n", health.Score, health.Label)
	for _, tip := range health.Tips {
		fmt.Fprintf(w, "  - %s\n", tip)
	}
	fmt.Fprintln(w)
}
