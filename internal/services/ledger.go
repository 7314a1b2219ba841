package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/currency"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/store"
)

// Ledger is the single write path into the store. It validates input,
// serialises mutations and publishes a domain event after every commit.
type Ledger struct {
	mu      sync.Mutex
	store   store.Repository
	bus     *events.Bus
	now     func() time.Time
	version atomic.Uint64
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerClock overrides the event timestamp source.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(repo store.Repository, bus *events.Bus, opts ...LedgerOption) *Ledger {
	if bus == nil {
		bus = events.NewBus()
	}
	l := &Ledger{store: repo, bus: bus, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bus returns the bus mutations are published on.
func (l *Ledger) Bus() *events.Bus { return l.bus }

// Version changes after every successful mutation.
func (l *Ledger) Version() uint64 { return l.version.Load() }

// publish bumps the version and fans the event out. Subscriber failures are
// logged; the write they follow has already been committed.
func (l *Ledger) publish(ctx context.Context, e events.Event) {
	l.version.Add(1)
	if err := l.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Event subscriber failed",
			"event_kind", e.Kind, "event_id", e.ID, "error", err)
	}
}

// TransactionFilter narrows ListTransactions. Zero values match everything.
type TransactionFilter struct {
	Category core.Category
	Type     core.TransactionType
	From     *core.Date
	To       *core.Date
}

func (f TransactionFilter) Validate() error {
	v := &core.ValidationError{}
	if f.Category != "" && !f.Category.IsValid() {
		v.Add("category", core.ErrInvalidCategory)
	}
	if f.Type != "" && !f.Type.IsValid() {
		v.Add("type", core.ErrInvalidType)
	}
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		v.Add("to", fmt.Errorf("%w: before from", core.ErrInvalidDate))
	}
	return v.OrNil()
}

func (f TransactionFilter) match(t core.Transaction) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.From != nil && t.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && t.Date.After(f.To.Time) {
		return false
	}
	return true
}

// Transactions

func (l *Ledger) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	all, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if f == (TransactionFilter{}) {
		return all, nil
	}
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, id)
}

func (l *Ledger) CreateTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.store.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	l.publish(ctx, events.Created(t, l.now()))
	return t, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	previous, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := l.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	l.publish(ctx, events.Updated(previous, t, l.now()))
	return t, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.store.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	l.publish(ctx, events.Deleted(t, l.now()))
	return t, nil
}

// Budgets

func (l *Ledger) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return l.store.ListBudgets(ctx)
}

func (l *Ledger) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return l.store.GetBudget(ctx, id)
}

func (l *Ledger) CreateBudget(ctx context.Context, in core.NewBudget) (core.Budget, error) {
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.store.CreateBudget(ctx, in)
	if err != nil {
		return core.Budget{}, err
	}
	l.publish(ctx, events.Saved(b, l.now()))
	// Reconciliation may have moved spent; report the stored row.
	return l.reloadBudget(ctx, b)
}

func (l *Ledger) UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	if err := p.Validate(); err != nil {
		return core.Budget{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.store.UpdateBudget(ctx, id, p)
	if err != nil {
		return core.Budget{}, err
	}
	l.publish(ctx, events.Saved(b, l.now()))
	return l.reloadBudget(ctx, b)
}

func (l *Ledger) reloadBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	fresh, err := l.store.GetBudget(ctx, b.ID)
	if err != nil {
		return b, nil
	}
	return fresh, nil
}

func (l *Ledger) DeleteBudget(ctx context.Context, id int64) (core.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.store.DeleteBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	l.version.Add(1)
	return b, nil
}

// Assets

func (l *Ledger) ListAssets(ctx context.Context) ([]core.Asset, error) {
	return l.store.ListAssets(ctx)
}

func (l *Ledger) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	return l.store.GetAsset(ctx, id)
}

func (l *Ledger) CreateAsset(ctx context.Context, in core.NewAsset) (core.Asset, error) {
	if err := in.Validate(); err != nil {
		return core.Asset{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.store.CreateAsset(ctx, in)
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	l.version.Add(1)
	return a, nil
}

func (l *Ledger) UpdateAsset(ctx context.Context, id int64, p core.AssetPatch) (core.Asset, error) {
	if err := p.Validate(); err != nil {
		return core.Asset{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.store.UpdateAsset(ctx, id, p)
	if err != nil {
		return core.Asset{}, err
	}
	l.version.Add(1)
	return a, nil
}

func (l *Ledger) DeleteAsset(ctx context.Context, id int64) (core.Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.store.DeleteAsset(ctx, id)
	if err != nil {
		return core.Asset{}, err
	}
	l.version.Add(1)
	return a, nil
}

// AssetSummary values every asset in the settings currency.
func (l *Ledger) AssetSummary(ctx context.Context) (core.AssetSummary, error) {
	settings, err := l.store.GetSettings(ctx)
	if err != nil {
		return core.AssetSummary{}, err
	}
	assets, err := l.store.ListAssets(ctx)
	if err != nil {
		return core.AssetSummary{}, err
	}
	return currency.Portfolio(assets, settings.Currency), nil
}

// Settings

func (l *Ledger) GetSettings(ctx context.Context) (core.Settings, error) {
	return l.store.GetSettings(ctx)
}

func (l *Ledger) UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error) {
	if err := p.Validate(); err != nil {
		return core.Settings{}, err
	}
	if p.Currency != nil && !currency.IsSupported(*p.Currency) {
		return core.Settings{}, core.NewFieldError("currency", core.ErrInvalidCurrency)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	s, err := l.store.UpdateSettings(ctx, p)
	if err != nil {
		return core.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	l.version.Add(1)
	return s, nil
}

// Whole-ledger operations

// Export returns a consistent copy of everything in the store.
func (l *Ledger) Export(ctx context.Context) (core.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		snap core.Snapshot
		err  error
	)
	if snap.Transactions, err = l.store.ListTransactions(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("export transactions: %w", err)
	}
	if snap.Budgets, err = l.store.ListBudgets(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("export budgets: %w", err)
	}
	if snap.Settings, err = l.store.GetSettings(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("export settings: %w", err)
	}
	if snap.Assets, err = l.store.ListAssets(ctx); err != nil {
		return core.Snapshot{}, fmt.Errorf("export assets: %w", err)
	}
	snap.ExportedAt = l.now().UTC()
	return snap, nil
}

// ClearAll removes every entity, resets id counters and restores default settings.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	l.publish(ctx, events.Cleared(l.now()))
	return nil
}

// IsEmpty reports whether the store holds no entities.
func (l *Ledger) IsEmpty(ctx context.Context) (bool, error) {
	snap, err := l.Export(ctx)
	if err != nil {
		return false, err
	}
	return len(snap.Transactions) == 0 && len(snap.Budgets) == 0 && len(snap.Assets) == 0, nil
}

// ApplySeed loads a seed through the normal write path, so budgets end up
// reconciled against the seeded transactions.
func (l *Ledger) ApplySeed(ctx context.Context, seed *store.Seed) error {
	if seed.IsEmpty() {
		return nil
	}
	if seed.Settings != nil {
		s := *seed.Settings
		theme := s.Theme
		if _, err := l.UpdateSettings(ctx, core.SettingsPatch{
			Currency: &s.Currency, Theme: &theme, Notifications: &s.Notifications,
		}); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}
	for i, b := range seed.Budgets {
		if _, err := l.CreateBudget(ctx, b); err != nil {
			return fmt.Errorf("seed budget %d: %w", i, err)
		}
	}
	for i, t := range seed.Transactions {
		if _, err := l.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	for i, a := range seed.Assets {
		if _, err := l.CreateAsset(ctx, a); err != nil {
			return fmt.Errorf("seed asset %d: %w", i, err)
		}
	}
	return nil
}
