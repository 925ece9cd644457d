package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
	"github.com/donaldgifford/bargain-tracker/internal/queue"
)

// Pool drains the queue with a fixed number of workers. Each worker
// receives a batch, processes every delivery with a fresh BatchCache and
// acks it. Deliveries are acked whatever their outcome, fetch failures
// included, since the next distribution retries them. A delivery is left
// un-acked, and so redelivered, only when processing errors or panics.
type Pool struct {
	engine       *Engine
	queue        queue.Queue
	workers      int
	batchSize    int
	pollInterval time.Duration
	log          *slog.Logger
}

// PoolOption configures the Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithBatchSize sets how many deliveries a worker receives at once.
func WithBatchSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithPollInterval sets the wait after an empty or failed receive.
func WithPollInterval(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.pollInterval = d
	}
}

// WithPoolLogger sets the pool's logger.
func WithPoolLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.log = l
	}
}

// NewPool creates a worker pool reading from q.
func NewPool(eng *Engine, q queue.Queue, opts ...PoolOption) *Pool {
	p := &Pool{
		engine:       eng,
		queue:        q,
		workers:      4,
		batchSize:    queue.MaxBatch,
		pollInterval: 5 * time.Second,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts the workers and blocks until ctx is canceled and every worker
// has returned.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info("worker pool started", "workers", p.workers, "batch_size", p.batchSize)

	var wg sync.WaitGroup
	for i := range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx, i)
		}()
	}
	wg.Wait()

	p.log.Info("worker pool stopped")
}

func (p *Pool) work(ctx context.Context, id int) {
	log := p.log.With("worker", id)
	for ctx.Err() == nil {
		n, err := p.RunBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.QueueReceiveErrorsTotal.Inc()
			log.Error("receive failed", "error", err)
		}
		if err != nil || n == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pollInterval):
			}
		}
	}
}

// RunBatch receives one batch and processes it, returning the number of
// deliveries received.
func (p *Pool) RunBatch(ctx context.Context) (int, error) {
	deliveries, err := p.queue.Receive(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("receiving tasks: %w", err)
	}

	cache := NewBatchCache()
	for _, d := range deliveries {
		p.handle(ctx, d, cache)
	}
	return len(deliveries), nil
}

// Drain processes batches until the queue comes back empty or ctx ends. It
// returns the number of deliveries received.
func (p *Pool) Drain(ctx context.Context) (int, error) {
	total := 0
	for ctx.Err() == nil {
		n, err := p.RunBatch(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, ctx.Err()
}

func (p *Pool) handle(ctx context.Context, d queue.Delivery, cache *BatchCache) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TaskPanicsTotal.Inc()
			p.log.Error("task processing panicked, leaving it for redelivery",
				"delivery", d.ID, "url", d.Task.ProductURL, "panic", r)
		}
	}()

	out, err := p.engine.Process(ctx, d.Task, cache)
	if err != nil {
		p.log.Error("task processing failed, leaving it for redelivery",
			"delivery", d.ID, "url", d.Task.ProductURL, "attempts", d.Attempts, "error", err)
		return
	}

	p.log.Info("task processed",
		"delivery", d.ID,
		"url", d.Task.ProductURL,
		"outcome", string(out.Kind),
		"notified", out.Notified,
		"write_lost", out.WriteLost,
	)

	if err := p.queue.Ack(ctx, d); err != nil {
		p.log.Warn("ack failed", "delivery", d.ID, "error", err)
	}
}
