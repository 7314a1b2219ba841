package store

import (
	"fmt"

	"budgetbuddy/internal/core"
)

// NotFound wraps core.ErrNotFound with the entity kind and id.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
}

// NoBudgetFor reports that no budget tracks category c.
func NoBudgetFor(c core.Category) error {
	return fmt.Errorf("budget for category %q: %w", c, core.ErrNotFound)
}

// DuplicateBudget wraps core.ErrConflict for a second budget on one category.
func DuplicateBudget(c core.Category) error {
	return fmt.Errorf("budget for category %q already exists: %w", c, core.ErrConflict)
}
