package backend

import (
	"context"
	"fmt"

	"budgetbuddy/internal/log"
	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/store"
	"budgetbuddy/internal/store/bolt"
	"budgetbuddy/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLBackend(ctx, storage.SQLite, config.SQLiteDBPath, "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		return f.createSQLBackend(ctx, storage.Postgres, config.PostgresDSN, "dsn", "[redacted]")
	case BoltBackend:
		return f.createBoltBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	repo := memory.New()

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Repository: repo,
		Cleanup:    repo.Close,
		Ready:      settingsProbe(repo),
	}, nil
}

func (f *DefaultFactory) createSQLBackend(ctx context.Context, d storage.Dialect, dsn, attr, shown string) (*BackendResult, error) {
	repo, err := storage.Open(ctx, d, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", d, err)
	}

	f.logger.Info("Initialized SQL backend", log.FieldBackend, string(d), attr, shown)

	return &BackendResult{
		Repository: repo,
		Cleanup:    repo.Close,
		Ready:      repo.DB().PingContext,
	}, nil
}

func (f *DefaultFactory) createBoltBackend(config Config) (*BackendResult, error) {
	repo, err := bolt.Open(config.BoltDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bolt store: %w", err)
	}

	f.logger.Info("Initialized bolt backend", "db_path", config.BoltDBPath)

	return &BackendResult{
		Repository: repo,
		Cleanup:    repo.Close,
		Ready:      settingsProbe(repo),
	}, nil
}

func settingsProbe(s store.SettingsStore) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.GetSettings(ctx)
		return err
	}
}
