package backend

import (
	"context"
	"path/filepath"
	"testing"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"postgres", &config.Config{DataBackend: "postgres", PostgresDSN: "postgres://localhost/db"}, PostgresBackend, false},
		{"unknown", &config.Config{DataBackend: "sheets"}, "", true},
		{"sqlite without path", &config.Config{DataBackend: "sqlite"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"bolt without path", Config{Type: BoltBackend}, true},
		{"bolt with path", Config{Type: BoltBackend, BoltDBPath: "x.bolt"}, false},
		{"invalid type", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		in      string
		want    BackendType
		wantErr bool
	}{
		{"memory", MemoryBackend, false},
		{" SQLite ", SQLiteBackend, false},
		{"postgres", PostgresBackend, false},
		{"bolt", BoltBackend, false},
		{"sheets", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackendType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackendType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackendType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBackendTypes(t *testing.T) {
	got := Types()
	want := []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend, BoltBackend}
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if MemoryBackend.Durable() || !BoltBackend.Durable() {
		t.Error("only the memory backend should be non-durable")
	}
	for _, bt := range got {
		want := bt == SQLiteBackend || bt == PostgresBackend
		if bt.Shared() != want {
			t.Errorf("%s.Shared() = %v, want %v", bt, bt.Shared(), want)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "sqlite", "test.db")}},
		{"bolt", Config{Type: BoltBackend, BoltDBPath: filepath.Join(dir, "bolt", "test.bolt")}},
	}

	factory := NewFactory(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := factory.CreateBackend(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			if err := res.Ready(ctx); err != nil {
				t.Fatalf("Ready() error = %v", err)
			}
			amount, _ := core.ParseAmount("12.50")
			date, _ := core.ParseDate("2025-06-01")
			tx, err := res.Repository.CreateTransaction(ctx, core.NewTransaction{
				Amount:      amount,
				Description: "Lunch",
				Category:    core.Food,
				Type:        core.ExpenseType,
				Date:        date,
			})
			if err != nil {
				t.Fatalf("CreateTransaction() error = %v", err)
			}
			if tx.ID != 1 {
				t.Errorf("first transaction id = %d, want 1", tx.ID)
			}
		})
	}
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("expected error for sqlite backend without path")
	}
}
