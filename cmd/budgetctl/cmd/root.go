// Package cmd provides the budgetctl commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/budget"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/store/bolt"
)

var (
	envFile string
	debug   bool

	logger *log.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "budgetctl",
	Short: "Administer a budgetbuddy data store",
	Long: `budgetctl operates directly on the store selected by DATA_BACKEND.

It supports:
- Exporting every entity as JSON or YAML
- Clearing all data
- Printing current-month statistics and the health score
- Repairing budget spent amounts

Example:
  budgetctl export --format yaml > backup.yaml
  budgetctl reconcile`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
		} else {
			cli.LoadEnvFile()
		}

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = log.New(log.Config{
			Level:     level,
			Component: log.ComponentApp,
			Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		})
		log.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// session is an opened store with the ledger wired over it.
type session struct {
	ledger *services.Ledger
	acc    *budget.Accumulator
	close  func() error
}

func openSession(ctx context.Context) (*session, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !backend.BackendType(cfg.DataBackend).Durable() {
		logger.Warn("Memory backend selected, changes will not persist")
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if errors.Is(err, bolt.ErrLocked) {
		return nil, fmt.Errorf("%s is in use, stop budgetbuddy before running budgetctl against a bolt store: %w", cfg.BoltDBPath, err)
	}
	if err != nil {
		return nil, err
	}

	ledger, acc := cli.NewLedger(res.Repository, logger)
	if err := cli.ApplySeed(ctx, logger, cfg, ledger); err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	return &session{ledger: ledger, acc: acc, close: res.Cleanup}, nil
}

// withSession opens the store for one command and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			logger.Warn("Close store", log.FieldError, err)
		}
	}()
	return fn(ctx, s)
}
