// Package bolt keeps the ledger in a single bbolt file, one bucket per
// entity kind with JSON values keyed by big-endian id.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

var _ store.Repository = (*Store)(nil)

var (
	transactionsBucket = []byte("transactions")
	budgetsBucket      = []byte("budgets")
	assetsBucket       = []byte("assets")
	settingsBucket     = []byte("settings")

	settingsKey = []byte("settings")

	allBuckets = [][]byte{transactionsBucket, budgetsBucket, assetsBucket, settingsBucket}
)

// ErrLocked means another process holds the database file. bbolt allows a
// single writer process per file.
var ErrLocked = errors.New("bolt database is locked by another process")

// lockTimeout bounds the wait for the file lock.
const lockTimeout = time.Second

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates or opens the database file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: lockTimeout})
	if errors.Is(err, berrors.ErrTimeout) {
		return nil, fmt.Errorf("open %s: %w", path, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	if err := db.Update(createBuckets); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func createBuckets(tx *bolt.Tx) error {
	for _, name := range allBuckets {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func put(b *bolt.Bucket, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", id, err)
	}
	return b.Put(itob(id), data)
}

func get[T any](b *bolt.Bucket, kind string, id int64) (T, error) {
	var v T
	data := b.Get(itob(id))
	if data == nil {
		return v, store.NotFound(kind, id)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s %d: %w", kind, id, err)
	}
	return v, nil
}

func all[T any](b *bolt.Bucket, kind string) ([]T, error) {
	out := []T{}
	err := b.ForEach(func(_, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func nextID(b *bolt.Bucket) (int64, error) {
	seq, err := b.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return int64(seq), nil
}

// Transactions

func (s *Store) ListTransactions(_ context.Context) (out []core.Transaction, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		out, err = all[core.Transaction](tx.Bucket(transactionsBucket), "transaction")
		return err
	})
	store.SortTransactions(out)
	return out, err
}

func (s *Store) GetTransaction(_ context.Context, id int64) (t core.Transaction, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		t, err = get[core.Transaction](tx.Bucket(transactionsBucket), "transaction", id)
		return err
	})
	return t, err
}

func (s *Store) CreateTransaction(_ context.Context, in core.NewTransaction) (t core.Transaction, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(transactionsBucket)
		id, err := nextID(b)
		if err != nil {
			return err
		}
		t = in.Build(id, s.now())
		return put(b, id, t)
	})
	return t, err
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, p core.TransactionPatch) (t core.Transaction, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(transactionsBucket)
		current, err := get[core.Transaction](b, "transaction", id)
		if err != nil {
			return err
		}
		t = p.Apply(current)
		return put(b, id, t)
	})
	return t, err
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) (t core.Transaction, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(transactionsBucket)
		t, err = get[core.Transaction](b, "transaction", id)
		if err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
	return t, err
}

// Budgets

func (s *Store) ListBudgets(_ context.Context) (out []core.Budget, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		out, err = all[core.Budget](tx.Bucket(budgetsBucket), "budget")
		return err
	})
	store.SortBudgets(out)
	return out, err
}

func (s *Store) GetBudget(_ context.Context, id int64) (bu core.Budget, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		bu, err = get[core.Budget](tx.Bucket(budgetsBucket), "budget", id)
		return err
	})
	return bu, err
}

func budgetFor(b *bolt.Bucket, c core.Category) (core.Budget, bool, error) {
	budgets, err := all[core.Budget](b, "budget")
	if err != nil {
		return core.Budget{}, false, err
	}
	for _, bu := range budgets {
		if bu.Category == c {
			return bu, true, nil
		}
	}
	return core.Budget{}, false, nil
}

func (s *Store) GetBudgetByCategory(_ context.Context, c core.Category) (bu core.Budget, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		found, ok, err := budgetFor(tx.Bucket(budgetsBucket), c)
		if err != nil {
			return err
		}
		if !ok {
			return store.NoBudgetFor(c)
		}
		bu = found
		return nil
	})
	return bu, err
}

func (s *Store) CreateBudget(_ context.Context, in core.NewBudget) (bu core.Budget, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(budgetsBucket)
		if _, taken, err := budgetFor(b, in.Category); err != nil {
			return err
		} else if taken {
			return store.DuplicateBudget(in.Category)
		}
		id, err := nextID(b)
		if err != nil {
			return err
		}
		bu = in.Build(id, s.now())
		return put(b, id, bu)
	})
	return bu, err
}

func (s *Store) UpdateBudget(_ context.Context, id int64, p core.BudgetPatch) (bu core.Budget, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(budgetsBucket)
		current, err := get[core.Budget](b, "budget", id)
		if err != nil {
			return err
		}
		if p.Category != nil && *p.Category != current.Category {
			if _, taken, err := budgetFor(b, *p.Category); err != nil {
				return err
			} else if taken {
				return store.DuplicateBudget(*p.Category)
			}
		}
		bu = p.Apply(current)
		return put(b, id, bu)
	})
	return bu, err
}

func (s *Store) DeleteBudget(_ context.Context, id int64) (bu core.Budget, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(budgetsBucket)
		bu, err = get[core.Budget](b, "budget", id)
		if err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
	return bu, err
}

func (s *Store) SetBudgetSpent(_ context.Context, id int64, spent core.Money) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(budgetsBucket)
		bu, err := get[core.Budget](b, "budget", id)
		if err != nil {
			return err
		}
		bu.Spent = spent
		return put(b, id, bu)
	})
}

// Assets

func (s *Store) ListAssets(_ context.Context) (out []core.Asset, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		out, err = all[core.Asset](tx.Bucket(assetsBucket), "asset")
		return err
	})
	store.SortAssets(out)
	return out, err
}

func (s *Store) GetAsset(_ context.Context, id int64) (a core.Asset, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		a, err = get[core.Asset](tx.Bucket(assetsBucket), "asset", id)
		return err
	})
	return a, err
}

func (s *Store) CreateAsset(_ context.Context, in core.NewAsset) (a core.Asset, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(assetsBucket)
		id, err := nextID(b)
		if err != nil {
			return err
		}
		a = in.Build(id, s.now())
		return put(b, id, a)
	})
	return a, err
}

func (s *Store) UpdateAsset(_ context.Context, id int64, p core.AssetPatch) (a core.Asset, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(assetsBucket)
		current, err := get[core.Asset](b, "asset", id)
		if err != nil {
			return err
		}
		a = p.Apply(current)
		return put(b, id, a)
	})
	return a, err
}

func (s *Store) DeleteAsset(_ context.Context, id int64) (a core.Asset, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(assetsBucket)
		a, err = get[core.Asset](b, "asset", id)
		if err != nil {
			return err
		}
		return b.Delete(itob(id))
	})
	return a, err
}

// Settings

func readSettings(b *bolt.Bucket) (core.Settings, error) {
	data := b.Get(settingsKey)
	if data == nil {
		return core.DefaultSettings(), nil
	}
	var st core.Settings
	if err := json.Unmarshal(data, &st); err != nil {
		return core.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return st, nil
}

func (s *Store) GetSettings(_ context.Context) (st core.Settings, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		st, err = readSettings(tx.Bucket(settingsBucket))
		return err
	})
	return st, err
}

func (s *Store) UpdateSettings(_ context.Context, p core.SettingsPatch) (st core.Settings, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(settingsBucket)
		current, err := readSettings(b)
		if err != nil {
			return err
		}
		st = p.Apply(current)
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return b.Put(settingsKey, data)
	})
	return st, err
}

// ClearAll drops and recreates every bucket, which also resets the id sequences.
func (s *Store) ClearAll(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("drop bucket %s: %w", name, err)
			}
		}
		return createBuckets(tx)
	})
}
