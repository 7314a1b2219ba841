package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbuddy/internal/budget"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/store"
	"budgetbuddy/internal/store/memory"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *memory.Store) {
	t.Helper()
	repo := memory.New()
	bus := events.NewBus()
	bus.Subscribe(budget.NewAccumulator(repo, log.Discard()).Handle)
	return NewLedger(repo, bus, WithLedgerClock(func() time.Time { return fixedNow })), repo
}

func expense(amount string, c core.Category, d core.Date) core.NewTransaction {
	return core.NewTransaction{
		Amount:      core.MustMoney(amount),
		Description: "test " + string(c),
		Category:    c,
		Type:        core.ExpenseType,
		Date:        d,
	}
}

func TestLedger_BudgetFollowsTransactions(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("200")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	tx, err := l.CreateTransaction(ctx, expense("50", core.Food, core.NewDate(2025, 6, 1)))
	if err != nil {
		t.Fatalf("create tx: %v", err)
	}
	assertSpent(t, l, b.ID, "50.00")

	amount := core.MustMoney("80")
	if _, err := l.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("update tx: %v", err)
	}
	assertSpent(t, l, b.ID, "80.00")

	if _, err := l.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete tx: %v", err)
	}
	assertSpent(t, l, b.ID, "0.00")
}

func TestLedger_NewBudgetStartsReconciled(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	for _, amt := range []string{"10", "15.50"} {
		if _, err := l.CreateTransaction(ctx, expense(amt, core.Transport, core.NewDate(2025, 6, 2))); err != nil {
			t.Fatalf("create tx: %v", err)
		}
	}
	b, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Transport, Amount: core.MustMoney("100")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if b.Spent.String() != "25.50" {
		t.Fatalf("spent = %s, want 25.50", b.Spent)
	}
}

func TestLedger_ValidationHappensBeforeMutation(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	before := l.Version()

	_, err := l.CreateTransaction(ctx, core.NewTransaction{Amount: core.MustMoney("-1"), Category: "pets", Type: "gift"})
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var v *core.ValidationError
	errors.As(err, &v)
	for _, field := range []string{"amount", "description", "category", "type"} {
		if _, ok := v.Fields[field]; !ok {
			t.Errorf("missing field error for %s: %v", field, v.Fields)
		}
	}
	if l.Version() != before {
		t.Fatal("version moved on rejected input")
	}
	list, _ := repo.ListTransactions(ctx)
	if len(list) != 0 {
		t.Fatalf("store mutated: %v", list)
	}
}

func TestLedger_NotFoundAndConflict(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.DeleteTransaction(ctx, 42); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("1")}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("2")}); !core.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLedger_ListTransactionsFilter(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	inputs := []core.NewTransaction{
		expense("1", core.Food, core.NewDate(2025, 5, 30)),
		expense("2", core.Food, core.NewDate(2025, 6, 3)),
		expense("3", core.Shopping, core.NewDate(2025, 6, 4)),
		{Amount: core.MustMoney("4"), Description: "pay", Category: core.Income, Type: core.IncomeType, Date: core.NewDate(2025, 6, 5)},
	}
	for _, in := range inputs {
		if _, err := l.CreateTransaction(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	from, to := core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 4)

	tests := []struct {
		name string
		f    TransactionFilter
		want []int64
	}{
		{"all", TransactionFilter{}, []int64{4, 3, 2, 1}},
		{"category", TransactionFilter{Category: core.Food}, []int64{2, 1}},
		{"type", TransactionFilter{Type: core.IncomeType}, []int64{4}},
		{"range inclusive", TransactionFilter{From: &from, To: &to}, []int64{3, 2}},
		{"combined", TransactionFilter{Category: core.Food, From: &from}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.ListTransactions(ctx, tt.f)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %v", len(got), tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("row %d: id %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	if _, err := l.ListTransactions(ctx, TransactionFilter{From: &to, To: &from}); !core.IsValidation(err) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestLedger_SettingsCurrencyMustBeSupported(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	bad := "XYZ"
	if _, err := l.UpdateSettings(ctx, core.SettingsPatch{Currency: &bad}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	eur := "eur"
	s, err := l.UpdateSettings(ctx, core.SettingsPatch{Currency: &eur})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.Currency != "EUR" || s.Theme != core.Light || !s.Notifications {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLedger_ExportAndClear(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	var cleared bool
	l.Bus().Subscribe(func(_ context.Context, e events.Event) error {
		if e.Kind == events.DataCleared {
			cleared = true
		}
		return nil
	})

	if _, err := l.CreateTransaction(ctx, expense("5", core.Food, core.NewDate(2025, 6, 1))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.CreateAsset(ctx, core.NewAsset{Name: "Car", Type: core.Vehicle, Value: core.MustMoney("9000")}); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	snap, err := l.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap.Transactions) != 1 || len(snap.Assets) != 1 || !snap.ExportedAt.Equal(fixedNow) {
		t.Fatalf("snapshot = %+v", snap)
	}

	if err := l.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !cleared {
		t.Fatal("expected data.cleared event")
	}
	empty, err := l.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("expected empty store, got %v %v", empty, err)
	}
	tx, err := l.CreateTransaction(ctx, expense("5", core.Food, core.NewDate(2025, 6, 1)))
	if err != nil || tx.ID != 1 {
		t.Fatalf("expected id 1 after clear, got %d %v", tx.ID, err)
	}
}

func TestLedger_ApplySeed(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	seed := &store.Seed{
		Settings:     &core.Settings{Currency: "GBP", Theme: core.Dark, Notifications: false},
		Budgets:      []core.NewBudget{{Category: core.Food, Amount: core.MustMoney("300")}},
		Transactions: []core.NewTransaction{expense("42", core.Food, core.NewDate(2025, 6, 1))},
		Assets:       []core.NewAsset{{Name: "Watch", Type: core.Jewelry, Value: core.MustMoney("120"), Currency: "GBP"}},
	}
	if err := l.ApplySeed(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	budgets, _ := l.ListBudgets(ctx)
	if len(budgets) != 1 || budgets[0].Spent.String() != "42.00" {
		t.Fatalf("budgets = %+v", budgets)
	}
	settings, _ := l.GetSettings(ctx)
	if settings.Currency != "GBP" || settings.Theme != core.Dark || settings.Notifications {
		t.Fatalf("settings = %+v", settings)
	}
	summary, err := l.AssetSummary(ctx)
	if err != nil || summary.TotalValue.String() != "120.00" || summary.Currency != "GBP" {
		t.Fatalf("summary = %+v %v", summary, err)
	}
}

func assertSpent(t *testing.T, l *Ledger, id int64, want string) {
	t.Helper()
	b, err := l.GetBudget(context.Background(), id)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if b.Spent.String() != want {
		t.Fatalf("spent = %s, want %s", b.Spent, want)
	}
}
