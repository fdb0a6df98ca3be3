package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"budgets/internal/amqp"
	"budgets/internal/services"
)

// EventConsumer delivers budget events until ctx is cancelled.
type EventConsumer interface {
	ConsumeBudgetEvents(ctx context.Context, handler func(context.Context, amqp.BudgetEvent) error) error
}

// RunConfig configures Run.
type RunConfig struct {
	Reconcile services.ReconcileProcessorConfig
	// StopTimeout bounds how long a running reconcile pass may take to
	// finish once Run is cancelled.
	StopTimeout time.Duration
}

// Run drives the periodic reconcile and, when consumer is non-nil, the event
// consumer until ctx is cancelled or one of them fails. The processor is
// stopped before Run returns.
func Run(ctx context.Context, w *MirrorWorker, consumer EventConsumer, cfg RunConfig) error {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	processor := services.NewReconcileProcessor(w, cfg.Reconcile)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeBudgetEvents(gctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
