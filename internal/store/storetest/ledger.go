package storetest

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/budget"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/store"
)

// RunLedger checks the budget bookkeeping of a ledger wired over each
// repository the factory returns.
func RunLedger(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, l *services.Ledger)
	}{
		{"SpentTracksRandomMutations", testSpentTracksRandomMutations},
		{"DeleteThenRecreateKeepsSpent", testDeleteThenRecreate},
		{"OverspentBudget", testOverspentBudget},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRepo(t)
			t.Cleanup(func() { _ = r.Close() })
			tc.fn(t, newLedger(r))
		})
	}
}

func newLedger(r store.Repository) *services.Ledger {
	bus := events.NewBus()
	bus.Subscribe(budget.NewAccumulator(r, log.Discard()).Handle)
	return services.NewLedger(r, bus)
}

func expenseOf(amount string, c core.Category) core.NewTransaction {
	return core.NewTransaction{
		Amount:      core.MustMoney(amount),
		Description: "spent on " + string(c),
		Category:    c,
		Type:        core.ExpenseType,
		Date:        core.NewDate(2025, time.June, 10),
	}
}

func budgetFor(t *testing.T, l *services.Ledger, c core.Category) core.Budget {
	t.Helper()
	budgets, err := l.ListBudgets(context.Background())
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	for _, b := range budgets {
		if b.Category == c {
			return b
		}
	}
	t.Fatalf("no budget for %s", c)
	return core.Budget{}
}

func wantSpent(t *testing.T, l *services.Ledger, c core.Category, want string) {
	t.Helper()
	if got := budgetFor(t, l, c).Spent.String(); got != want {
		t.Fatalf("%s spent = %s, want %s", c, got, want)
	}
}

func testSpentTracksRandomMutations(t *testing.T, l *services.Ledger) {
	ctx := context.Background()
	tracked := []core.Category{core.Food, core.Transport}
	categories := []core.Category{core.Food, core.Transport, core.Shopping}
	types := []core.TransactionType{core.ExpenseType, core.ExpenseType, core.IncomeType}
	for _, c := range tracked {
		if _, err := l.CreateBudget(ctx, core.NewBudget{Category: c, Amount: core.MustMoney("500")}); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(20250615))
	live := map[int64]core.Transaction{}
	var ids []int64
	randomAmount := func() core.Money {
		return core.MustMoney(fmt.Sprintf("%d.%02d", rng.Intn(300)+1, rng.Intn(100)))
	}

	for step := 0; step < 150; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			in := expenseOf("1", categories[rng.Intn(len(categories))])
			in.Amount = randomAmount()
			in.Type = types[rng.Intn(len(types))]
			tx, err := l.CreateTransaction(ctx, in)
			if err != nil {
				t.Fatalf("step %d create: %v", step, err)
			}
			live[tx.ID] = tx
			ids = append(ids, tx.ID)
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			amount := randomAmount()
			category := categories[rng.Intn(len(categories))]
			txType := types[rng.Intn(len(types))]
			tx, err := l.UpdateTransaction(ctx, id, core.TransactionPatch{Amount: &amount, Category: &category, Type: &txType})
			if err != nil {
				t.Fatalf("step %d update %d: %v", step, id, err)
			}
			live[id] = tx
		default:
			i := rng.Intn(len(ids))
			id := ids[i]
			if _, err := l.DeleteTransaction(ctx, id); err != nil {
				t.Fatalf("step %d delete %d: %v", step, id, err)
			}
			delete(live, id)
			ids = append(ids[:i], ids[i+1:]...)
		}

		for _, c := range tracked {
			sum := core.Zero
			for _, tx := range live {
				if tx.Type == core.ExpenseType && tx.Category == c {
					sum = sum.Add(tx.Amount)
				}
			}
			if got := budgetFor(t, l, c).Spent; got.Cmp(sum.ClampZero()) != 0 {
				t.Fatalf("step %d: %s spent = %s, want %s", step, c, got, sum.ClampZero())
			}
		}
	}
}

func testDeleteThenRecreate(t *testing.T, l *services.Ledger) {
	ctx := context.Background()
	if _, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("100")}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := l.CreateTransaction(ctx, expenseOf("12.30", core.Food)); err != nil {
		t.Fatalf("create: %v", err)
	}
	tx, err := l.CreateTransaction(ctx, expenseOf("7.70", core.Food))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantSpent(t, l, core.Food, "20.00")

	if _, err := l.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again, err := l.CreateTransaction(ctx, expenseOf("7.70", core.Food))
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if again.ID == tx.ID {
		t.Fatalf("recreated transaction reused id %d", tx.ID)
	}
	wantSpent(t, l, core.Food, "20.00")
}

func testOverspentBudget(t *testing.T, l *services.Ledger) {
	ctx := context.Background()
	if _, err := l.CreateBudget(ctx, core.NewBudget{Category: core.Food, Amount: core.MustMoney("200")}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	small, err := l.CreateTransaction(ctx, expenseOf("50.00", core.Food))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.CreateTransaction(ctx, expenseOf("200.00", core.Food)); err != nil {
		t.Fatalf("create: %v", err)
	}
	wantSpent(t, l, core.Food, "250.00")

	status := analytics.New(nil).BudgetStatus([]core.Budget{budgetFor(t, l, core.Food)})
	if len(status) != 1 {
		t.Fatalf("budget status = %+v", status)
	}
	if status[0].PercentageUsed != 125 {
		t.Errorf("percentageUsed = %v, want 125", status[0].PercentageUsed)
	}
	if got := status[0].Remaining.String(); got != "-50.00" {
		t.Errorf("remaining = %s, want -50.00", got)
	}

	if _, err := l.DeleteTransaction(ctx, small.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantSpent(t, l, core.Food, "200.00")
}
