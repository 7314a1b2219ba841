// Package events carries ledger mutations to in-process subscribers.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetbuddy/internal/core"
)

type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
	BudgetSaved        Kind = "budget.saved"
	DataCleared        Kind = "data.cleared"
)

// Event describes one committed mutation. Previous is only set on updates.
type Event struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	OccurredAt  time.Time         `json:"occurredAt"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Previous    *core.Transaction `json:"previous,omitempty"`
	Budget      *core.Budget      `json:"budget,omitempty"`
}

func newEvent(kind Kind, at time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, OccurredAt: at.UTC()}
}

func Created(t core.Transaction, at time.Time) Event {
	e := newEvent(TransactionCreated, at)
	e.Transaction = &t
	return e
}

func Updated(previous, current core.Transaction, at time.Time) Event {
	e := newEvent(TransactionUpdated, at)
	e.Previous = &previous
	e.Transaction = &current
	return e
}

func Deleted(t core.Transaction, at time.Time) Event {
	e := newEvent(TransactionDeleted, at)
	e.Transaction = &t
	return e
}

func Saved(b core.Budget, at time.Time) Event {
	e := newEvent(BudgetSaved, at)
	e.Budget = &b
	return e
}

func Cleared(at time.Time) Event {
	return newEvent(DataCleared, at)
}

// Categories lists the budget categories an event can affect.
func (e Event) Categories() []core.Category {
	var out []core.Category
	add := func(c core.Category) {
		for _, seen := range out {
			if seen == c {
				return
			}
		}
		out = append(out, c)
	}
	if e.Previous != nil {
		add(e.Previous.Category)
	}
	if e.Transaction != nil {
		add(e.Transaction.Category)
	}
	if e.Budget != nil {
		add(e.Budget.Category)
	}
	return out
}

type Handler func(ctx context.Context, e Event) error

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish runs every handler and joins their errors. A failing handler does
// not stop the ones after it.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
