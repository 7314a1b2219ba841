// Package storetest is a conformance suite run against every store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) store.Repository

// Run exercises the full store contract.
func Run(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, r store.Repository)
	}{
		{"TransactionIDsAreMonotonic", testTransactionIDs},
		{"TransactionOrdering", testTransactionOrdering},
		{"TransactionUpdateMerges", testTransactionUpdate},
		{"TransactionNotFound", testTransactionNotFound},
		{"BudgetDefaultsAndUniqueness", testBudgets},
		{"BudgetSpent", testBudgetSpent},
		{"AssetOrderingAndDefaults", testAssets},
		{"SettingsSingleton", testSettings},
		{"ClearAllResets", testClearAll},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRepo(t)
			t.Cleanup(func() { _ = r.Close() })
			tc.fn(t, r)
		})
	}
}

func tx(amount string, cat core.Category, typ core.TransactionType, date core.Date) core.NewTransaction {
	return core.NewTransaction{
		Amount:      core.MustMoney(amount),
		Description: string(cat) + " " + amount,
		Category:    cat,
		Type:        typ,
		Date:        date,
	}
}

func mustCreateTx(t *testing.T, r store.Repository, in core.NewTransaction) core.Transaction {
	t.Helper()
	out, err := r.CreateTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return out
}

func testTransactionIDs(t *testing.T, r store.Repository) {
	ctx := context.Background()
	d := core.NewDate(2025, 1, 10)
	a := mustCreateTx(t, r, tx("1", core.Food, core.ExpenseType, d))
	b := mustCreateTx(t, r, tx("2", core.Food, core.ExpenseType, d))
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("createdAt not set")
	}
	if _, err := r.DeleteTransaction(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c := mustCreateTx(t, r, tx("3", core.Food, core.ExpenseType, d))
	if c.ID != 3 {
		t.Fatalf("expected id 3 after delete, got %d", c.ID)
	}
	got, err := r.GetTransaction(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.String() != "3.00" || got.Date.String() != "2025-01-10" || got.Category != core.Food {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func testTransactionOrdering(t *testing.T, r store.Repository) {
	ctx := context.Background()
	mustCreateTx(t, r, tx("1", core.Food, core.ExpenseType, core.NewDate(2025, 1, 1)))
	mustCreateTx(t, r, tx("2", core.Food, core.ExpenseType, core.NewDate(2025, 3, 1)))
	mustCreateTx(t, r, tx("3", core.Food, core.ExpenseType, core.NewDate(2025, 2, 1)))
	mustCreateTx(t, r, tx("4", core.Food, core.ExpenseType, core.NewDate(2025, 3, 1)))

	list, err := r.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{2, 4, 3, 1}
	if len(list) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: want id %d got %d", i, id, list[i].ID)
		}
	}
}

func testTransactionUpdate(t *testing.T, r store.Repository) {
	ctx := context.Background()
	orig := mustCreateTx(t, r, tx("10", core.Food, core.ExpenseType, core.NewDate(2025, 1, 1)))
	amount := core.MustMoney("15.5")
	cat := core.Shopping
	got, err := r.UpdateTransaction(ctx, orig.ID, core.TransactionPatch{Amount: &amount, Category: &cat})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount.String() != "15.50" || got.Category != core.Shopping {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Description != orig.Description || got.Type != orig.Type || !got.Date.Equal(orig.Date.Time) {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("createdAt changed from %v to %v", orig.CreatedAt, got.CreatedAt)
	}
}

func testTransactionNotFound(t *testing.T, r store.Repository) {
	ctx := context.Background()
	if _, err := r.GetTransaction(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := r.UpdateTransaction(ctx, 42, core.TransactionPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if _, err := r.DeleteTransaction(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func testBudgets(t *testing.T, r store.Repository) {
	ctx := context.Background()
	food, err := r.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("200")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if food.ID != 1 || food.Period != core.Monthly || food.Spent.String() != "0.00" {
		t.Fatalf("unexpected defaults: %+v", food)
	}
	if _, err := r.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("1")}); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate category, got %v", err)
	}
	fun, err := r.CreateBudget(ctx, core.NewBudget{Category: core.Entertainment, Amount: core.MustMoney("50"), Period: core.Weekly})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if fun.ID != 2 {
		t.Fatalf("expected id 2, got %d", fun.ID)
	}

	cat := core.Food
	if _, err := r.UpdateBudget(ctx, fun.ID, core.BudgetPatch{Category: &cat}); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict moving onto taken category, got %v", err)
	}
	got, err := r.GetBudgetByCategory(ctx, core.Entertainment)
	if err != nil || got.ID != fun.ID {
		t.Fatalf("by category: %+v %v", got, err)
	}
	if _, err := r.GetBudgetByCategory(ctx, core.Healthcare); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := r.ListBudgets(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %v", list, err)
	}
	if _, err := r.DeleteBudget(ctx, food.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetBudget(ctx, food.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testBudgetSpent(t *testing.T, r store.Repository) {
	ctx := context.Background()
	b, err := r.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("200")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetBudgetSpent(ctx, b.ID, core.MustMoney("250")); err != nil {
		t.Fatalf("set spent: %v", err)
	}
	amount := core.MustMoney("300")
	got, err := r.UpdateBudget(ctx, b.ID, core.BudgetPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Spent.String() != "250.00" || got.Amount.String() != "300.00" {
		t.Fatalf("unexpected budget %+v", got)
	}
	if err := r.SetBudgetSpent(ctx, 99, core.Zero); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testAssets(t *testing.T, r store.Repository) {
	ctx := context.Background()
	bought := core.NewDate(2020, 6, 1)
	first, err := r.CreateAsset(ctx, core.NewAsset{Name: "Flat", Type: core.Property, Value: core.MustMoney("250000"), PurchaseDate: &bought})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Currency != "USD" {
		t.Fatalf("expected USD default, got %q", first.Currency)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := r.CreateAsset(ctx, core.NewAsset{Name: "Watch", Type: core.Jewelry, Value: core.MustMoney("900"), Currency: "EUR", Description: "gift"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	list, err := r.ListAssets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].PurchaseDate == nil || list[1].PurchaseDate.String() != "2020-06-01" {
		t.Fatalf("purchase date lost: %+v", list[1].PurchaseDate)
	}
	if list[0].PurchaseDate != nil || list[0].Description != "gift" {
		t.Fatalf("unexpected optional fields: %+v", list[0])
	}

	name := "Apartment"
	got, err := r.UpdateAsset(ctx, first.ID, core.AssetPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Apartment" || got.Value.String() != "250000.00" {
		t.Fatalf("unexpected asset %+v", got)
	}
	if _, err := r.DeleteAsset(ctx, 77); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testSettings(t *testing.T, r store.Repository) {
	ctx := context.Background()
	s, err := r.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s != core.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}
	theme := core.Dark
	s, err = r.UpdateSettings(ctx, core.SettingsPatch{Theme: &theme})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.Theme != core.Dark || s.Currency != "USD" || !s.Notifications {
		t.Fatalf("unexpected merge: %+v", s)
	}
	again, _ := r.GetSettings(ctx)
	if again != s {
		t.Fatalf("update not persisted: %+v", again)
	}
}

func testClearAll(t *testing.T, r store.Repository) {
	ctx := context.Background()
	mustCreateTx(t, r, tx("5", core.Food, core.ExpenseType, core.NewDate(2025, 1, 1)))
	mustCreateTx(t, r, tx("6", core.Food, core.ExpenseType, core.NewDate(2025, 1, 1)))
	if _, err := r.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("1")}); err != nil {
		t.Fatalf("budget: %v", err)
	}
	if _, err := r.CreateAsset(ctx, core.NewAsset{Name: "Bike", Type: core.Vehicle, Value: core.MustMoney("300")}); err != nil {
		t.Fatalf("asset: %v", err)
	}
	off := false
	if _, err := r.UpdateSettings(ctx, core.SettingsPatch{Notifications: &off}); err != nil {
		t.Fatalf("settings: %v", err)
	}

	if err := r.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	txs, _ := r.ListTransactions(ctx)
	bs, _ := r.ListBudgets(ctx)
	as, _ := r.ListAssets(ctx)
	if len(txs) != 0 || len(bs) != 0 || len(as) != 0 {
		t.Fatalf("expected empty collections, got %d/%d/%d", len(txs), len(bs), len(as))
	}
	s, _ := r.GetSettings(ctx)
	if s != core.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", s)
	}
	again := mustCreateTx(t, r, tx("7", core.Food, core.ExpenseType, core.NewDate(2025, 1, 1)))
	if again.ID != 1 {
		t.Fatalf("expected counter reset to 1, got %d", again.ID)
	}
}
