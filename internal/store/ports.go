// Package store defines the persistence ports shared by every backend.
//
// Every backend assigns ids from a per-kind counter starting at 1. Ids are
// never reused until ClearAll resets the counters.
package store

import (
	"context"

	"budgetbuddy/internal/core"
)

// TransactionStore lists transactions by date descending, ties by insertion order.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
	// DeleteTransaction removes the row and returns what was deleted.
	DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// BudgetStore keeps at most one budget per category.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	GetBudgetByCategory(ctx context.Context, c core.Category) (core.Budget, error)
	CreateBudget(ctx context.Context, in core.NewBudget) (core.Budget, error)
	UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) (core.Budget, error)
	SetBudgetSpent(ctx context.Context, id int64, spent core.Money) error
}

// AssetStore lists assets by creation time descending.
type AssetStore interface {
	ListAssets(ctx context.Context) ([]core.Asset, error)
	GetAsset(ctx context.Context, id int64) (core.Asset, error)
	CreateAsset(ctx context.Context, in core.NewAsset) (core.Asset, error)
	UpdateAsset(ctx context.Context, id int64, p core.AssetPatch) (core.Asset, error)
	DeleteAsset(ctx context.Context, id int64) (core.Asset, error)
}

// SettingsStore is a single-slot store, defaulted on first read.
type SettingsStore interface {
	GetSettings(ctx context.Context) (core.Settings, error)
	UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error)
}

// Repository is the full entity store.
type Repository interface {
	TransactionStore
	BudgetStore
	AssetStore
	SettingsStore

	// ClearAll empties every collection, resets id counters and restores default settings.
	ClearAll(ctx context.Context) error
	Close() error
}
