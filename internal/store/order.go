package store

import (
	"sort"

	"budgetbuddy/internal/core"
)

// SortTransactions orders by date descending; equal dates keep id order.
func SortTransactions(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].ID < txs[j].ID
	})
}

// SortBudgets orders by id.
func SortBudgets(bs []core.Budget) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
}

// SortAssets orders by creation time descending; equal times keep id order.
func SortAssets(as []core.Asset) {
	sort.SliceStable(as, func(i, j int) bool {
		if !as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].CreatedAt.After(as[j].CreatedAt)
		}
		return as[i].ID < as[j].ID
	})
}
