// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point decimals with two fractional digits. They are
// rendered as strings ("50.00") on the wire so clients never see binary
// floating-point values.
package core

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount always kept at two fractional digits.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// MaxAmount is the largest amount any entity may carry; it fits the
// NUMERIC(14, 2) columns of the SQL schema.
var MaxAmount = MustMoney("999999999999.99")

// NewMoney rounds d to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// MoneyFromCents builds an amount from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// MustMoney parses s and panics on failure. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney parses a signed decimal string.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Used for stored and wire values; use
// ParseAmount for user-entered amounts that must be positive.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if !isPlainDecimal(s) {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(d), nil
}

// ParseAmount converts a user-entered decimal string to a positive amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35 (half-up)
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	m, err := ParseMoney(s)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func isPlainDecimal(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 || (parts[0] == "" && (len(parts) == 1 || parts[1] == "")) {
		return false
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// ClampZero returns m, or zero when m is negative.
func (m Money) ClampZero() Money {
	if m.d.IsNegative() {
		return Zero
	}
	return m
}

// Decimal exposes the underlying value for ratio math.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount in cents.
func (m Money) Cents() int64 { return m.d.Shift(2).IntPart() }

func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON encodes the amount as a two-digit string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a string or a bare JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return malformed(b, moneyType)
		}
		raw = s
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return malformed(b, moneyType)
	}
	*m = parsed
	return nil
}

// checkAmount records field against v unless m is positive and at most
// MaxAmount.
func checkAmount(v *ValidationError, field string, m Money) {
	switch {
	case !m.IsPositive():
		v.Add(field, ErrInvalidAmount)
	case m.Cmp(MaxAmount) > 0:
		v.Add(field, ErrAmountTooLarge)
	}
}

// MarshalYAML renders the amount as a string scalar.
func (m Money) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML parses a scalar amount.
func (m *Money) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds every amount.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
