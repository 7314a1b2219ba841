// Package currency converts between the handful of currencies the ledger
// knows about, using static rates relative to USD.
package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

// usdRates is units of each currency per one USD.
var usdRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.85"),
	"GBP": decimal.RequireFromString("0.73"),
	"JPY": decimal.RequireFromString("110"),
	"CAD": decimal.RequireFromString("1.35"),
	"AUD": decimal.RequireFromString("1.45"),
	"CHF": decimal.RequireFromString("0.88"),
	"CNY": decimal.RequireFromString("7.2"),
	"INR": decimal.RequireFromString("75"),
	"BRL": decimal.RequireFromString("5.2"),
}

const ratePrecision = 10

func normalize(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// Supported lists the known currency codes in alphabetical order.
func Supported() []string {
	out := make([]string, 0, len(usdRates))
	for code := range usdRates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func IsSupported(code string) bool {
	_, ok := usdRates[normalize(code)]
	return ok
}

// Rate returns how many units of to one unit of from buys.
func Rate(from, to string) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	fromRate, ok := usdRates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %q", core.ErrInvalidCurrency, from)
	}
	toRate, ok := usdRates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %q", core.ErrInvalidCurrency, to)
	}
	return toRate.DivRound(fromRate, ratePrecision), nil
}

// Convert expresses amount, held in from, in to.
func Convert(amount core.Money, from, to string) (core.Money, error) {
	rate, err := Rate(from, to)
	if err != nil {
		return core.Money{}, err
	}
	return core.NewMoney(amount.Decimal().Mul(rate)), nil
}

// Portfolio values assets in the target currency. Assets in a currency
// without a rate are counted but listed as unpriced.
func Portfolio(assets []core.Asset, target string) core.AssetSummary {
	target = normalize(target)
	s := core.AssetSummary{
		Currency:   target,
		TotalValue: core.Zero,
		Count:      len(assets),
		ByType:     make(map[core.AssetType]core.Money),
	}
	for _, a := range assets {
		v, err := Convert(a.Value, a.Currency, target)
		if err != nil {
			s.Unpriced = append(s.Unpriced, a.ID)
			continue
		}
		s.TotalValue = s.TotalValue.Add(v)
		s.ByType[a.Type] = s.ByType[a.Type].Add(v)
	}
	return s
}
