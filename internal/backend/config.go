package backend

import (
	"errors"
	"fmt"
	"strings"

	"budgetbuddy/internal/config"
)

// Types lists every selectable backend in DATA_BACKEND order.
func Types() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend, BoltBackend}
}

// ParseBackendType resolves a DATA_BACKEND value.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		names := make([]string, 0, len(Types()))
		for _, t := range Types() {
			names = append(names, t.String())
		}
		return "", fmt.Errorf("unknown backend %q, want one of %s", s, strings.Join(names, ", "))
	}
	return bt, nil
}

// FromAppConfig picks the storage settings relevant to DATA_BACKEND.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Type: bt}
	switch bt {
	case SQLiteBackend:
		cfg.SQLiteDBPath = appConfig.SQLiteDBPath
	case PostgresBackend:
		cfg.PostgresDSN = appConfig.PostgresDSN
	case BoltBackend:
		cfg.BoltDBPath = appConfig.BoltDBPath
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has its location.
func (c Config) Validate() error {
	var missing string
	switch c.Type {
	case MemoryBackend:
		return nil
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			missing = "SQLITE_DB_PATH"
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			missing = "POSTGRES_DSN"
		}
	case BoltBackend:
		if c.BoltDBPath == "" {
			missing = "BOLT_DB_PATH"
		}
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if missing != "" {
		return fmt.Errorf("%s backend requires %s", c.Type, missing)
	}
	return nil
}
