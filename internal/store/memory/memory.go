// Package memory is the process-lifetime store. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

var _ store.Repository = (*Store)(nil)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	assets       map[int64]core.Asset
	settings     *core.Settings

	nextTransaction int64
	nextBudget      int64
	nextAsset       int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the createdAt source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.transactions = make(map[int64]core.Transaction)
	s.budgets = make(map[int64]core.Budget)
	s.assets = make(map[int64]core.Asset)
	s.settings = nil
	s.nextTransaction, s.nextBudget, s.nextAsset = 1, 1, 1
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	store.SortTransactions(out)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, store.NotFound("transaction", id)
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, in core.NewTransaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := in.Build(s.nextTransaction, s.now())
	s.nextTransaction++
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, store.NotFound("transaction", id)
	}
	t = p.Apply(t)
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, store.NotFound("transaction", id)
	}
	delete(s.transactions, id)
	return t, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	store.SortBudgets(out)
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, store.NotFound("budget", id)
	}
	return b, nil
}

func (s *Store) GetBudgetByCategory(_ context.Context, c core.Category) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgetFor(c); ok {
		return b, nil
	}
	return core.Budget{}, store.NoBudgetFor(c)
}

func (s *Store) budgetFor(c core.Category) (core.Budget, bool) {
	for _, b := range s.budgets {
		if b.Category == c {
			return b, true
		}
	}
	return core.Budget{}, false
}

func (s *Store) CreateBudget(_ context.Context, in core.NewBudget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.budgetFor(in.Category); exists {
		return core.Budget{}, store.DuplicateBudget(in.Category)
	}
	b := in.Build(s.nextBudget, s.now())
	s.nextBudget++
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, store.NotFound("budget", id)
	}
	if p.Category != nil && *p.Category != b.Category {
		if _, exists := s.budgetFor(*p.Category); exists {
			return core.Budget{}, store.DuplicateBudget(*p.Category)
		}
	}
	b = p.Apply(b)
	s.budgets[id] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, store.NotFound("budget", id)
	}
	delete(s.budgets, id)
	return b, nil
}

func (s *Store) SetBudgetSpent(_ context.Context, id int64, spent core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return store.NotFound("budget", id)
	}
	b.Spent = spent
	s.budgets[id] = b
	return nil
}

func (s *Store) ListAssets(_ context.Context) ([]core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, cloneAsset(a))
	}
	store.SortAssets(out)
	return out, nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, store.NotFound("asset", id)
	}
	return cloneAsset(a), nil
}

func (s *Store) CreateAsset(_ context.Context, in core.NewAsset) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := in.Build(s.nextAsset, s.now())
	s.nextAsset++
	s.assets[a.ID] = cloneAsset(a)
	return a, nil
}

func (s *Store) UpdateAsset(_ context.Context, id int64, p core.AssetPatch) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, store.NotFound("asset", id)
	}
	a = p.Apply(cloneAsset(a))
	s.assets[id] = a
	return cloneAsset(a), nil
}

func (s *Store) DeleteAsset(_ context.Context, id int64) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, store.NotFound("asset", id)
	}
	delete(s.assets, id)
	return a, nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSettings(), nil
}

func (s *Store) UpdateSettings(_ context.Context, p core.SettingsPatch) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := p.Apply(s.currentSettings())
	s.settings = &updated
	return updated, nil
}

func (s *Store) currentSettings() core.Settings {
	if s.settings == nil {
		d := core.DefaultSettings()
		s.settings = &d
	}
	return *s.settings
}

func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) Close() error { return nil }

func cloneAsset(a core.Asset) core.Asset {
	if a.PurchaseDate != nil {
		d := *a.PurchaseDate
		a.PurchaseDate = &d
	}
	return a
}
