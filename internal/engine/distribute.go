package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// Distribute enqueues one task per catalog product, each a snapshot of the
// product's title and price at this moment, and returns how many were
// enqueued. Running it twice before the queue drains enqueues duplicates;
// the processor's conditional price update absorbs them.
func (eng *Engine) Distribute(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.DistributionDuration.Observe(time.Since(start).Seconds())
	}()

	products, err := eng.products.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing products: %w", err)
	}
	if len(products) == 0 {
		eng.log.Info("distribution skipped, catalog is empty")
		return 0, nil
	}

	tasks := make([]domain.Task, 0, len(products))
	for i := range products {
		tasks = append(tasks, domain.TaskFromProduct(&products[i]))
	}

	if err := eng.queue.Enqueue(ctx, tasks); err != nil {
		return 0, fmt.Errorf("enqueueing tasks: %w", err)
	}

	metrics.TasksEnqueuedTotal.Add(float64(len(tasks)))
	eng.log.Info("distribution complete", "tasks", len(tasks), "duration", time.Since(start))
	return len(tasks), nil
}

// QueueDepth reports the approximate number of tasks waiting in the queue.
func (eng *Engine) QueueDepth(ctx context.Context) (int, error) {
	return eng.queue.Pending(ctx)
}
