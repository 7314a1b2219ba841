package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbuddy/internal/core"
)

func TestBusDeliversInOrderAndJoinsErrors(t *testing.T) {
	bus := NewBus()
	var seen []string
	boom := errors.New("boom")
	bus.Subscribe(func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+string(e.Kind))
		return boom
	})
	bus.Subscribe(func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+string(e.Kind))
		return nil
	})

	err := bus.Publish(context.Background(), Cleared(time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(seen) != 2 || seen[0] != "first:data.cleared" || seen[1] != "second:data.cleared" {
		t.Fatalf("unexpected delivery: %v", seen)
	}
}

func TestEventCategories(t *testing.T) {
	prev := core.Transaction{ID: 1, Category: core.Food}
	cur := core.Transaction{ID: 1, Category: core.Transport}
	now := time.Now()

	tests := []struct {
		name string
		e    Event
		want []core.Category
	}{
		{"created", Created(cur, now), []core.Category{core.Transport}},
		{"updated across categories", Updated(prev, cur, now), []core.Category{core.Food, core.Transport}},
		{"updated same category", Updated(prev, prev, now), []core.Category{core.Food}},
		{"budget saved", Saved(core.Budget{Category: core.Utilities}, now), []core.Category{core.Utilities}},
		{"cleared", Cleared(now), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Categories()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEventsCarryUniqueIDs(t *testing.T) {
	a, b := Cleared(time.Now()), Cleared(time.Now())
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}
