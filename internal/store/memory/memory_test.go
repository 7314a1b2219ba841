package memory

import (
	"context"
	"testing"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
	"budgetbuddy/internal/store/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository { return New() })
}

func TestLedgerBookkeeping(t *testing.T) {
	storetest.RunLedger(t, func(t *testing.T) store.Repository { return New() })
}

func TestAssetTiesKeepInsertionOrder(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.CreateAsset(ctx, core.NewAsset{Name: name, Type: core.OtherAsset, Value: core.MustMoney("1")}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, _ := s.ListAssets(ctx)
	for i, want := range []int64{1, 2, 3} {
		if list[i].ID != want {
			t.Fatalf("position %d: want %d got %d", i, want, list[i].ID)
		}
	}
}

func TestReturnedAssetsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := core.NewDate(2021, 1, 1)
	a, _ := s.CreateAsset(ctx, core.NewAsset{Name: "x", Type: core.OtherAsset, Value: core.MustMoney("1"), PurchaseDate: &d})
	*a.PurchaseDate = core.NewDate(1999, 1, 1)
	got, _ := s.GetAsset(ctx, a.ID)
	if got.PurchaseDate.String() != "2021-01-01" {
		t.Fatalf("stored asset mutated through returned pointer: %s", got.PurchaseDate)
	}
}
