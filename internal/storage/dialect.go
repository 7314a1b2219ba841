package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the SQL flavour a Repository speaks.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a backend name onto a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case SQLite:
		return SQLite, nil
	case Postgres, "postgresql":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", s)
}

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $N for postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// sqliteTimeLayout is fixed width so that TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

func (d Dialect) timeArg(t time.Time) any {
	if d == Postgres {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func (d Dialect) clearStatements() []string {
	if d == Postgres {
		return []string{
			"TRUNCATE transactions, budgets, assets RESTART IDENTITY",
			"DELETE FROM settings",
		}
	}
	return []string{
		"DELETE FROM transactions",
		"DELETE FROM budgets",
		"DELETE FROM assets",
		"DELETE FROM settings",
		"DELETE FROM sqlite_sequence WHERE name IN ('transactions', 'budgets', 'assets')",
	}
}
