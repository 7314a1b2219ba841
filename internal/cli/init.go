// Package cli provides common CLI initialization utilities shared by
// cmd/budgetbuddy, cmd/budgetbuddy-worker and cmd/budgetctl.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/adapters/ollama"
	"budgetbuddy/internal/adapters/openai"
	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/budget"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/insights"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/store"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL and
// installs it as the default logger.
func SetupLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the repository selected by DATA_BACKEND.
// Returns the backend or exits the process on failure.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err, log.FieldBackend, cfg.DataBackend, log.FieldErrorType, log.ErrorTypeDatabase)
		os.Exit(1)
	}
	return res
}

// NewLedger wires the ledger, its event bus and the budget accumulator
// over repo.
func NewLedger(repo store.Repository, logger *log.Logger) (*services.Ledger, *budget.Accumulator) {
	bus := events.NewBus()
	acc := budget.NewAccumulator(repo, logger)
	bus.Subscribe(acc.Handle)
	return services.NewLedger(repo, bus), acc
}

// ConnectAMQP dials the broker when AMQP_URL is set. A failed dial is logged
// and yields nil so the caller can continue without messaging.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without messaging",
			log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// NewTextGenerator returns the model adapter selected by AI_PROVIDER.
func NewTextGenerator(logger *log.Logger, cfg *config.Config) insights.TextGenerator {
	switch cfg.AIProvider {
	case "openai":
		logger.Info("AI provider configured", log.FieldProvider, "openai", "model", cfg.OpenAIModel)
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "ollama":
		logger.Info("AI provider configured", log.FieldProvider, "ollama", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel, nil)
	default:
		logger.Info("No AI provider configured, serving fallback insights")
		return insights.Unavailable{}
	}
}

// ApplySeed loads SEED_FILE through the ledger. With SEED_ONLY_IF_EMPTY the
// seed is skipped when the store already holds data.
func ApplySeed(ctx context.Context, logger *log.Logger, cfg *config.Config, ledger *services.Ledger) error {
	if cfg.SeedFile == "" {
		return nil
	}
	if cfg.SeedOnlyIfEmpty {
		empty, err := ledger.IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			logger.Info("Store already has data, skipping seed", "seed_file", cfg.SeedFile)
			return nil
		}
	}
	seed, err := store.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	if err := ledger.ApplySeed(ctx, seed); err != nil {
		return err
	}
	logger.Info("Seed applied",
		"seed_file", cfg.SeedFile,
		"transactions", len(seed.Transactions),
		"budgets", len(seed.Budgets),
		"assets", len(seed.Assets),
		log.FieldOperation, log.OpSeed)
	return nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
