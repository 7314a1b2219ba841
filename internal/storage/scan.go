package storage

import (
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

// The scanners below accept both the TEXT encodings used by sqlite and the
// native NUMERIC/DATE/TIMESTAMPTZ values returned by lib/pq.

type moneyColumn struct{ v *core.Money }

func (c moneyColumn) Scan(src any) error {
	var s string
	switch x := src.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case int64:
		*c.v = core.MoneyFromCents(x * 100)
		return nil
	case float64:
		s = fmt.Sprintf("%.2f", x)
	default:
		return fmt.Errorf("scan money: unsupported type %T", src)
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		return fmt.Errorf("scan money %q: %w", s, err)
	}
	*c.v = m
	return nil
}

type dateColumn struct {
	v     *core.Date
	valid bool
}

func (c *dateColumn) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		c.valid = false
		return nil
	case time.Time:
		*c.v = core.DateOf(x)
	case string, []byte:
		s := fmt.Sprintf("%s", x)
		if len(s) > len(core.DateLayout) {
			s = s[:len(core.DateLayout)]
		}
		d, err := core.ParseDate(s)
		if err != nil {
			return fmt.Errorf("scan date %q: %w", s, err)
		}
		*c.v = d
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
	c.valid = true
	return nil
}

type timeColumn struct{ v *time.Time }

func (c timeColumn) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		*c.v = x.UTC()
		return nil
	case string, []byte:
		s := fmt.Sprintf("%s", x)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("scan timestamp %q: %w", s, err)
		}
		*c.v = t.UTC()
		return nil
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", src)
}
