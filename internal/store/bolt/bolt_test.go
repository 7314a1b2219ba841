package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
	"budgetbuddy/internal/store/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return s
	})
}

func TestLedgerBookkeeping(t *testing.T) {
	storetest.RunLedger(t, func(t *testing.T) store.Repository {
		s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return s
	})
}

func TestSequencesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	in := core.NewAsset{Name: "Flat", Type: core.Property, Value: core.MustMoney("250000")}
	if _, err := s.CreateAsset(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	a, err := s.CreateAsset(ctx, in)
	if err != nil {
		t.Fatalf("create after reopen: %v", err)
	}
	if a.ID != 2 {
		t.Fatalf("expected id 2 after reopen, got %d", a.ID)
	}
}

func TestOpenReportsLockedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer first.Close()

	second, err := Open(path)
	if err == nil {
		second.Close()
		t.Fatal("second open of a held file succeeded")
	}
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second open error = %v, want ErrLocked", err)
	}
}
