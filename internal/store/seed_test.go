package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetbuddy/internal/core"
)

func TestParseSeed(t *testing.T) {
	doc := `
settings:
  currency: EUR
  theme: dark
  notifications: false
budgets:
  - category: food
    amount: "200"
transactions:
  - amount: "50.00"
    description: weekly shop
    category: food
    type: expense
    date: 2025-01-03
assets:
  - name: Bike
    type: vehicle
    value: "350"
`
	s, err := ParseSeed([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Settings == nil || s.Settings.Currency != "EUR" || s.Settings.Theme != core.Dark {
		t.Fatalf("settings: %+v", s.Settings)
	}
	if len(s.Budgets) != 1 || s.Budgets[0].Amount.String() != "200.00" {
		t.Fatalf("budgets: %+v", s.Budgets)
	}
	if len(s.Transactions) != 1 || s.Transactions[0].Date.String() != "2025-01-03" {
		t.Fatalf("transactions: %+v", s.Transactions)
	}
	if len(s.Assets) != 1 || s.IsEmpty() {
		t.Fatalf("assets: %+v", s.Assets)
	}
}

func TestParseSeedRejectsInvalidRows(t *testing.T) {
	doc := `
transactions:
  - amount: "-5"
    description: refund
    category: food
    type: expense
    date: 2025-01-03
`
	_, err := ParseSeed([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "seed transaction 0") {
		t.Fatalf("expected row error, got %v", err)
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	s, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || !s.IsEmpty() {
		t.Fatalf("expected empty seed, got %+v %v", s, err)
	}

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("budgets: [{category: pets, amount: \"1\"}]"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSeed(path); err == nil {
		t.Fatalf("expected invalid category error")
	}
}
