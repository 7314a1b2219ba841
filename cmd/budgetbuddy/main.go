package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/cli"
	apphttp "budgetbuddy/internal/http"
	"budgetbuddy/internal/insights"
	"budgetbuddy/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	startup := context.Background()
	res := cli.OpenBackend(startup, logger, cfg)

	ledger, _ := cli.NewLedger(res.Repository, logger)

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		ledger.Bus().Subscribe(amqpClient.Handle)
	}

	if err := cli.ApplySeed(startup, logger, cfg, ledger); err != nil {
		logger.Error("Failed to apply seed", log.FieldError, err, "seed_file", cfg.SeedFile)
		os.Exit(1)
	}

	aggregator := analytics.New(time.Now)
	generator := insights.New(cli.NewTextGenerator(logger, cfg),
		insights.WithAggregator(aggregator),
		insights.WithTimeout(cfg.AITimeout),
		insights.WithLogger(logger),
	)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Ledger:    ledger,
		Analytics: aggregator,
		Insights:  generator,
		Logger:    logger,
		Ready:     res.Ready,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		WriteTimeout:       cfg.AITimeout + 10*time.Second,
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting budgetbuddy server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldProvider, cfg.AIProvider,
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
