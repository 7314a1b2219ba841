// Package storage is the database/sql backed store, shared by the sqlite
// and postgres dialects.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

var _ store.Repository = (*Repository)(nil)

type Repository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to dsn, applies migrations and returns a ready Repository.
// For sqlite dsn is a file path whose directory is created if missing.
func Open(ctx context.Context, d Dialect, dsn string) (*Repository, error) {
	if d == SQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if d == SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, dialect: d, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for health checks.
func (r *Repository) DB() *sql.DB { return r.db }

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, r.dialect.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Transactions

const transactionColumns = "id, amount, description, category, type, date, created_at"

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var t core.Transaction
	date := dateColumn{v: &t.Date}
	err := s.Scan(&t.ID, moneyColumn{&t.Amount}, &t.Description, &t.Category, &t.Type, &date, timeColumn{&t.CreatedAt})
	return t, err
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) getTransaction(ctx context.Context, q querier, id int64) (core.Transaction, error) {
	row := q.QueryRowContext(ctx, r.dialect.rebind("SELECT "+transactionColumns+" FROM transactions WHERE id = ?"), id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return r.getTransaction(ctx, r.db, id)
}

func (r *Repository) CreateTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	t := in.Build(0, r.now())
	id, err := r.insert(ctx, r.db,
		"INSERT INTO transactions (amount, description, category, type, date, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.Amount.String(), t.Description, string(t.Category), string(t.Type), t.Date.String(), r.dialect.timeArg(t.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		out = p.Apply(current)
		_, err = tx.ExecContext(ctx, r.dialect.rebind(
			"UPDATE transactions SET amount = ?, description = ?, category = ?, type = ?, date = ? WHERE id = ?"),
			out.Amount.String(), out.Description, string(out.Category), string(out.Type), out.Date.String(), id)
		if err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var out core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.dialect.rebind("DELETE FROM transactions WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete transaction %d: %w", id, err)
		}
		out = current
		return nil
	})
	return out, err
}

// Budgets

const budgetColumns = "id, category, amount, spent, period, created_at"

func scanBudget(s rowScanner) (core.Budget, error) {
	var b core.Budget
	err := s.Scan(&b.ID, &b.Category, moneyColumn{&b.Amount}, moneyColumn{&b.Spent}, &b.Period, timeColumn{&b.CreatedAt})
	return b, err
}

func (r *Repository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+budgetColumns+" FROM budgets ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) getBudget(ctx context.Context, q querier, id int64) (core.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, r.dialect.rebind("SELECT "+budgetColumns+" FROM budgets WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.NotFound("budget", id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return r.getBudget(ctx, r.db, id)
}

func (r *Repository) budgetByCategory(ctx context.Context, q querier, c core.Category) (core.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, r.dialect.rebind("SELECT "+budgetColumns+" FROM budgets WHERE category = ?"), string(c)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.NoBudgetFor(c)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for %s: %w", c, err)
	}
	return b, nil
}

func (r *Repository) GetBudgetByCategory(ctx context.Context, c core.Category) (core.Budget, error) {
	return r.budgetByCategory(ctx, r.db, c)
}

func (r *Repository) categoryTaken(ctx context.Context, q querier, c core.Category) (bool, error) {
	_, err := r.budgetByCategory(ctx, q, c)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (r *Repository) CreateBudget(ctx context.Context, in core.NewBudget) (core.Budget, error) {
	b := in.Build(0, r.now())
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := r.categoryTaken(ctx, tx, b.Category)
		if err != nil {
			return err
		}
		if taken {
			return store.DuplicateBudget(b.Category)
		}
		id, err := r.insert(ctx, tx,
			"INSERT INTO budgets (category, amount, spent, period, created_at) VALUES (?, ?, ?, ?, ?)",
			string(b.Category), b.Amount.String(), b.Spent.String(), string(b.Period), r.dialect.timeArg(b.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		b.ID = id
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	var out core.Budget
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getBudget(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Category != nil && *p.Category != current.Category {
			taken, err := r.categoryTaken(ctx, tx, *p.Category)
			if err != nil {
				return err
			}
			if taken {
				return store.DuplicateBudget(*p.Category)
			}
		}
		out = p.Apply(current)
		_, err = tx.ExecContext(ctx, r.dialect.rebind(
			"UPDATE budgets SET category = ?, amount = ?, spent = ?, period = ? WHERE id = ?"),
			string(out.Category), out.Amount.String(), out.Spent.String(), string(out.Period), id)
		if err != nil {
			return fmt.Errorf("update budget %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

func (r *Repository) DeleteBudget(ctx context.Context, id int64) (core.Budget, error) {
	var out core.Budget
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getBudget(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.dialect.rebind("DELETE FROM budgets WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete budget %d: %w", id, err)
		}
		out = current
		return nil
	})
	return out, err
}

func (r *Repository) SetBudgetSpent(ctx context.Context, id int64, spent core.Money) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind("UPDATE budgets SET spent = ? WHERE id = ?"), spent.String(), id)
	if err != nil {
		return fmt.Errorf("set budget %d spent: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound("budget", id)
	}
	return nil
}

// Assets

const assetColumns = "id, name, type, value, currency, description, purchase_date, created_at"

func scanAsset(s rowScanner) (core.Asset, error) {
	var (
		a        core.Asset
		purchase core.Date
	)
	pd := dateColumn{v: &purchase}
	err := s.Scan(&a.ID, &a.Name, &a.Type, moneyColumn{&a.Value}, &a.Currency, &a.Description, &pd, timeColumn{&a.CreatedAt})
	if err != nil {
		return core.Asset{}, err
	}
	a.Currency = strings.TrimSpace(a.Currency)
	if pd.valid {
		a.PurchaseDate = &purchase
	}
	return a, nil
}

func purchaseDateArg(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func (r *Repository) ListAssets(ctx context.Context) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+assetColumns+" FROM assets ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	out := []core.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) getAsset(ctx context.Context, q querier, id int64) (core.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, r.dialect.rebind("SELECT "+assetColumns+" FROM assets WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Asset{}, store.NotFound("asset", id)
	}
	if err != nil {
		return core.Asset{}, fmt.Errorf("get asset %d: %w", id, err)
	}
	return a, nil
}

func (r *Repository) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	return r.getAsset(ctx, r.db, id)
}

func (r *Repository) CreateAsset(ctx context.Context, in core.NewAsset) (core.Asset, error) {
	a := in.Build(0, r.now())
	id, err := r.insert(ctx, r.db,
		"INSERT INTO assets (name, type, value, currency, description, purchase_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.Name, string(a.Type), a.Value.String(), a.Currency, a.Description, purchaseDateArg(a.PurchaseDate), r.dialect.timeArg(a.CreatedAt))
	if err != nil {
		return core.Asset{}, fmt.Errorf("insert asset: %w", err)
	}
	a.ID = id
	return a, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, id int64, p core.AssetPatch) (core.Asset, error) {
	var out core.Asset
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		out = p.Apply(current)
		_, err = tx.ExecContext(ctx, r.dialect.rebind(
			"UPDATE assets SET name = ?, type = ?, value = ?, currency = ?, description = ?, purchase_date = ? WHERE id = ?"),
			out.Name, string(out.Type), out.Value.String(), out.Currency, out.Description, purchaseDateArg(out.PurchaseDate), id)
		if err != nil {
			return fmt.Errorf("update asset %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

func (r *Repository) DeleteAsset(ctx context.Context, id int64) (core.Asset, error) {
	var out core.Asset
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.dialect.rebind("DELETE FROM assets WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete asset %d: %w", id, err)
		}
		out = current
		return nil
	})
	return out, err
}

// Settings

func (r *Repository) getSettings(ctx context.Context, q querier) (core.Settings, error) {
	var s core.Settings
	err := q.QueryRowContext(ctx, "SELECT currency, theme, notifications FROM settings WHERE id = 1").
		Scan(&s.Currency, &s.Theme, &s.Notifications)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	s.Currency = strings.TrimSpace(s.Currency)
	return s, nil
}

func (r *Repository) GetSettings(ctx context.Context) (core.Settings, error) {
	return r.getSettings(ctx, r.db)
}

func (r *Repository) UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error) {
	var out core.Settings
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.getSettings(ctx, tx)
		if err != nil {
			return err
		}
		out = p.Apply(current)
		_, err = tx.ExecContext(ctx, r.dialect.rebind(
			`INSERT INTO settings (id, currency, theme, notifications) VALUES (1, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET currency = excluded.currency, theme = excluded.theme, notifications = excluded.notifications`),
			out.Currency, string(out.Theme), out.Notifications)
		if err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		return nil
	})
	return out, err
}

func (r *Repository) ClearAll(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range r.dialect.clearStatements() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear data: %w", err)
			}
		}
		return nil
	})
}
