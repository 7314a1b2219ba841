// Package worker runs the background budget reconciliation that keeps
// Budget.spent consistent with a durable store shared with the API server.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// Reconciler recomputes budget spent amounts from the transaction set.
type Reconciler interface {
	Reconcile(ctx context.Context, c core.Category) error
	ReconcileAll(ctx context.Context) (int, error)
}

// Consumer delivers ledger event messages until its context ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.MessageHandler) error
}

// Stats counts what the worker has done since start.
type Stats struct {
	MessagesHandled int64
	FullPasses      int64
	BudgetsRepaired int64
	Failures        int64
}

// ReconcileWorker handles ledger events from AMQP and runs a periodic full
// reconciliation as a backstop for lost messages.
type ReconcileWorker struct {
	reconciler Reconciler
	consumer   Consumer
	interval   time.Duration
	logger     *log.Logger

	handled  atomic.Int64
	passes   atomic.Int64
	repaired atomic.Int64
	failures atomic.Int64
}

// NewReconcileWorker creates a worker. A nil consumer runs the periodic pass only.
func NewReconcileWorker(r Reconciler, consumer Consumer, interval time.Duration, logger *log.Logger) *ReconcileWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReconcileWorker{
		reconciler: r,
		consumer:   consumer,
		interval:   interval,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage reconciles the budgets touched by one ledger event.
func (w *ReconcileWorker) HandleMessage(ctx context.Context, msg *amqp.EventMessage) error {
	w.handled.Add(1)

	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldEventID, msg.EventID,
		log.FieldEventKind, msg.Kind)

	if msg.ReconcilesAll() {
		_, err := w.fullPass(ctx)
		return err
	}

	var errs []error
	for _, c := range msg.Categories {
		if !c.IsValid() {
			w.logger.WarnContext(ctx, "Skipping unknown category", log.FieldCategory, c, log.FieldEventID, msg.EventID)
			continue
		}
		if err := w.reconciler.Reconcile(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		w.failures.Add(1)
		return fmt.Errorf("reconcile event %s: %w", msg.EventID, err)
	}
	return nil
}

// StartupCheck runs one full pass so the worker starts from a consistent state.
func (w *ReconcileWorker) StartupCheck(ctx context.Context) error {
	repaired, err := w.fullPass(ctx)
	if err != nil {
		return fmt.Errorf("startup reconcile: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup reconcile completed", "budgets_repaired", repaired, log.FieldOperation, log.OpStartup)
	return nil
}

func (w *ReconcileWorker) fullPass(ctx context.Context) (int, error) {
	w.passes.Add(1)
	repaired, err := w.reconciler.ReconcileAll(ctx)
	w.repaired.Add(int64(repaired))
	if err != nil {
		w.failures.Add(1)
		return repaired, err
	}
	if repaired > 0 {
		w.logger.InfoContext(ctx, "Budgets repaired",
			"count", repaired, log.FieldOperation, log.OpReconcile)
	}
	return repaired, nil
}

// Run consumes events and ticks the periodic pass until ctx is cancelled.
// Cancellation is a clean stop and returns nil.
func (w *ReconcileWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.Consume(ctx, w.HandleMessage)
		})
	} else {
		w.logger.Info("No message consumer configured, running periodic reconcile only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := w.fullPass(ctx); err != nil && ctx.Err() == nil {
					w.logger.ErrorContext(ctx, "Periodic reconcile failed", log.FieldError, err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns a snapshot of the worker counters.
func (w *ReconcileWorker) Stats() Stats {
	return Stats{
		MessagesHandled: w.handled.Load(),
		FullPasses:      w.passes.Load(),
		BudgetsRepaired: w.repaired.Load(),
		Failures:        w.failures.Load(),
	}
}
