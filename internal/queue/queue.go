// Package queue carries monitoring tasks from the distributor to the worker
// pool with at-least-once delivery. A delivery that is not acked is handed
// out again once its lease (or SQS visibility timeout) expires.
package queue

import (
	"context"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// MaxBatch is the largest number of tasks sent or received in one call.
const MaxBatch = 10

// Queue is a task queue.
type Queue interface {
	Enqueue(ctx context.Context, tasks []domain.Task) error
	// Receive returns up to limit deliveries. It may return none.
	Receive(ctx context.Context, limit int) ([]Delivery, error)
	// Ack removes a processed delivery from the queue.
	Ack(ctx context.Context, d Delivery) error
	// Pending reports the approximate number of queued tasks.
	Pending(ctx context.Context) (int, error)
}

// Delivery is one received task.
type Delivery struct {
	ID       string
	Task     domain.Task
	Attempts int

	rowID   int64
	receipt string
}

func chunk(tasks []domain.Task, size int) [][]domain.Task {
	var out [][]domain.Task
	for size < len(tasks) {
		tasks, out = tasks[size:], append(out, tasks[:size:size])
	}
	if len(tasks) > 0 {
		out = append(out, tasks)
	}
	return out
}

func clampBatch(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxBatch {
		return MaxBatch
	}
	return n
}
