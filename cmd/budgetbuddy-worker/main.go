package main

import (
	"context"
	"os"
	"time"

	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	logger.Info("Starting budgetbuddy-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !backend.BackendType(cfg.DataBackend).Shared() {
		logger.Error("The worker needs a backend it can share with the server (sqlite or postgres)",
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	res := cli.OpenBackend(context.Background(), logger, cfg)
	_, acc := cli.NewLedger(res.Repository, logger)

	amqpClient := cli.ConnectAMQP(logger, cfg)

	var w *worker.ReconcileWorker
	if amqpClient != nil {
		w = worker.NewReconcileWorker(acc, amqpClient, cfg.ReconcileInterval, logger)
	} else {
		w = worker.NewReconcileWorker(acc, nil, cfg.ReconcileInterval, logger)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	// A failed startup pass is not fatal; the periodic pass retries.
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup reconcile failed", log.FieldError, err)
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	stats := w.Stats()
	logger.Info("Worker shutdown complete",
		"messages", stats.MessagesHandled,
		"full_passes", stats.FullPasses,
		"budgets_repaired", stats.BudgetsRepaired)
}
