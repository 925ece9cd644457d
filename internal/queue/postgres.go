package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// TaskStore is the tasks table API of the store.
type TaskStore interface {
	EnqueueTasks(ctx context.Context, tasks []domain.Task) error
	ClaimTasks(ctx context.Context, holder string, limit int, lease time.Duration) ([]store.QueuedTask, error)
	DeleteTask(ctx context.Context, id int64, holder string) error
	CountPendingTasks(ctx context.Context) (int, error)
}

// enqueueChunk bounds the rows of one multi-row insert.
const enqueueChunk = 500

// PostgresQueue is a Queue over the store's tasks table. Claims take a lease
// with FOR UPDATE SKIP LOCKED (Postgres) so concurrent workers never share
// a task until its lease expires.
type PostgresQueue struct {
	store  TaskStore
	holder string
	lease  time.Duration
}

// NewPostgresQueue returns a PostgresQueue whose claims last lease. Each queue
// gets its own holder id; acks from another holder are ignored.
func NewPostgresQueue(s TaskStore, lease time.Duration) *PostgresQueue {
	return &PostgresQueue{
		store:  s,
		holder: uuid.NewString(),
		lease:  lease,
	}
}

// Enqueue inserts tasks.
func (q *PostgresQueue) Enqueue(ctx context.Context, tasks []domain.Task) error {
	for _, batch := range chunk(tasks, enqueueChunk) {
		if err := q.store.EnqueueTasks(ctx, batch); err != nil {
			return fmt.Errorf("enqueueing %d tasks: %w", len(batch), err)
		}
	}
	return nil
}

// Receive leases up to limit tasks.
func (q *PostgresQueue) Receive(ctx context.Context, limit int) ([]Delivery, error) {
	claimed, err := q.store.ClaimTasks(ctx, q.holder, clampBatch(limit), q.lease)
	if err != nil {
		return nil, fmt.Errorf("claiming tasks: %w", err)
	}

	out := make([]Delivery, 0, len(claimed))
	for _, c := range claimed {
		out = append(out, Delivery{
			ID:       strconv.FormatInt(c.ID, 10),
			Task:     c.Task,
			Attempts: c.Attempts,
			rowID:    c.ID,
		})
	}
	return out, nil
}

// Ack deletes the task row.
func (q *PostgresQueue) Ack(ctx context.Context, d Delivery) error {
	if err := q.store.DeleteTask(ctx, d.rowID, q.holder); err != nil {
		return fmt.Errorf("acking task %s: %w", d.ID, err)
	}
	return nil
}

// Pending counts the tasks still in the table, leased or not.
func (q *PostgresQueue) Pending(ctx context.Context) (int, error) {
	n, err := q.store.CountPendingTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}
