package currency

import (
	"errors"
	"testing"

	"budgetbuddy/internal/core"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		amount   string
		from, to string
		want     string
	}{
		{"100", "USD", "USD", "100.00"},
		{"100", "USD", "EUR", "85.00"},
		{"85", "EUR", "USD", "100.00"},
		{"100", "eur", "gbp", "85.88"},
		{"1", "USD", "JPY", "110.00"},
		{"0", "BRL", "INR", "0.00"},
	}
	for _, tt := range tests {
		got, err := Convert(core.MustMoney(tt.amount), tt.from, tt.to)
		if err != nil {
			t.Fatalf("Convert(%s %s->%s): %v", tt.amount, tt.from, tt.to, err)
		}
		if got.String() != tt.want {
			t.Errorf("Convert(%s %s->%s) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestUnknownCurrency(t *testing.T) {
	if _, err := Rate("USD", "XYZ"); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if IsSupported("XYZ") || !IsSupported(" chf ") {
		t.Fatal("IsSupported mismatch")
	}
	if got := Supported(); len(got) != 10 || got[0] != "AUD" {
		t.Fatalf("Supported() = %v", got)
	}
}

func TestPortfolio(t *testing.T) {
	assets := []core.Asset{
		{ID: 1, Type: core.Property, Value: core.MustMoney("1000"), Currency: "USD"},
		{ID: 2, Type: core.Property, Value: core.MustMoney("850"), Currency: "EUR"},
		{ID: 3, Type: core.Vehicle, Value: core.MustMoney("50"), Currency: "USD"},
		{ID: 4, Type: core.Jewelry, Value: core.MustMoney("10"), Currency: "XYZ"},
	}
	s := Portfolio(assets, "usd")
	if s.Currency != "USD" || s.Count != 4 {
		t.Fatalf("summary header: %+v", s)
	}
	if s.TotalValue.String() != "2050.00" {
		t.Fatalf("total = %s", s.TotalValue)
	}
	if s.ByType[core.Property].String() != "2000.00" || s.ByType[core.Vehicle].String() != "50.00" {
		t.Fatalf("by type = %v", s.ByType)
	}
	if len(s.Unpriced) != 1 || s.Unpriced[0] != 4 {
		t.Fatalf("unpriced = %v", s.Unpriced)
	}
}
