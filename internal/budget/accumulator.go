// Package budget keeps Budget.spent in step with the expense transactions
// recorded against each category.
package budget

import (
	"context"
	"errors"
	"fmt"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/log"
)

// Store is the slice of the repository the accumulator needs.
type Store interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	GetBudgetByCategory(ctx context.Context, c core.Category) (core.Budget, error)
	SetBudgetSpent(ctx context.Context, id int64, spent core.Money) error
}

type Accumulator struct {
	store  Store
	logger *log.Logger
}

func NewAccumulator(s Store, logger *log.Logger) *Accumulator {
	return &Accumulator{store: s, logger: logger.WithComponent(log.ComponentBudget)}
}

// Contribution is what a transaction adds to its category budget.
func Contribution(t core.Transaction) core.Money {
	if t.IsExpense() {
		return t.Amount
	}
	return core.Zero
}

// Adjust moves the spent amount of the budget for c by delta, never below
// zero. A category without a budget is left alone.
func (a *Accumulator) Adjust(ctx context.Context, c core.Category, delta core.Money) error {
	if delta.IsZero() {
		return nil
	}
	b, err := a.store.GetBudgetByCategory(ctx, c)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("adjust %s budget: %w", c, err)
	}
	spent := b.Spent.Add(delta).ClampZero()
	if err := a.store.SetBudgetSpent(ctx, b.ID, spent); err != nil {
		return fmt.Errorf("adjust %s budget: %w", c, err)
	}
	a.logger.DebugContext(ctx, "Budget adjusted",
		log.FieldCategory, c, log.FieldAmount, delta.String(), "spent", spent.String())
	return nil
}

// Reconcile recomputes the spent amount of the budget for c from the
// current transaction set.
func (a *Accumulator) Reconcile(ctx context.Context, c core.Category) error {
	b, err := a.store.GetBudgetByCategory(ctx, c)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reconcile %s budget: %w", c, err)
	}
	txs, err := a.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("reconcile %s budget: %w", c, err)
	}
	return a.reconcile(ctx, b, txs)
}

// ReconcileAll repairs every budget in one pass over the transactions.
func (a *Accumulator) ReconcileAll(ctx context.Context) (int, error) {
	budgets, err := a.store.ListBudgets(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile budgets: %w", err)
	}
	txs, err := a.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile budgets: %w", err)
	}
	changed := 0
	for _, b := range budgets {
		before := b.Spent
		if err := a.reconcile(ctx, b, txs); err != nil {
			return changed, err
		}
		if SpentFrom(b.Category, txs).Cmp(before) != 0 {
			changed++
		}
	}
	return changed, nil
}

// SpentFrom sums the expense transactions of category c.
func SpentFrom(c core.Category, txs []core.Transaction) core.Money {
	total := core.Zero
	for _, t := range txs {
		if t.Category == c {
			total = total.Add(Contribution(t))
		}
	}
	return total
}

func (a *Accumulator) reconcile(ctx context.Context, b core.Budget, txs []core.Transaction) error {
	spent := SpentFrom(b.Category, txs)
	if spent.Cmp(b.Spent) == 0 {
		return nil
	}
	if err := a.store.SetBudgetSpent(ctx, b.ID, spent); err != nil {
		return fmt.Errorf("reconcile %s budget: %w", b.Category, err)
	}
	a.logger.InfoContext(ctx, "Budget reconciled",
		log.FieldCategory, b.Category, "previous", b.Spent.String(), "spent", spent.String(),
		log.FieldOperation, log.OpReconcile)
	return nil
}

// Handle applies a ledger event. It is meant to be subscribed to the bus.
func (a *Accumulator) Handle(ctx context.Context, e events.Event) error {
	switch e.Kind {
	case events.TransactionCreated:
		return a.Adjust(ctx, e.Transaction.Category, Contribution(*e.Transaction))
	case events.TransactionDeleted:
		return a.Adjust(ctx, e.Transaction.Category, Contribution(*e.Transaction).Neg())
	case events.TransactionUpdated:
		if err := a.Adjust(ctx, e.Previous.Category, Contribution(*e.Previous).Neg()); err != nil {
			return err
		}
		return a.Adjust(ctx, e.Transaction.Category, Contribution(*e.Transaction))
	case events.BudgetSaved:
		return a.Reconcile(ctx, e.Budget.Category)
	}
	return nil
}
