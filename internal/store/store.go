// Package store defines the datastore abstraction for bargain-tracker.
// All business logic depends on the Store interface, never on concrete
// implementations. PostgresStore backs production; memstore backs tests and
// single-process local runs.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// ErrNotFound is returned when a keyed lookup matches no row.
var ErrNotFound = errors.New("not found")

// WatcherQuery defines optional filters for watcher listings.
type WatcherQuery struct {
	Email      *string
	ProductURL *string
	Limit      int // default 50
	Offset     int
	OrderBy    string // "created_at", "product_title"
	Unbounded  bool   // ignore Limit and Offset
}

// QueuedTask is a monitoring task stored in the tasks table together with its
// lease bookkeeping.
type QueuedTask struct {
	ID         int64
	Task       domain.Task
	Attempts   int
	EnqueuedAt time.Time
	LeasedBy   string
}

// Store defines all data access operations for bargain-tracker.
type Store interface {
	// Watchers
	InsertWatcher(ctx context.Context, w *domain.Watcher) (inserted bool, err error)
	GetWatcher(ctx context.Context, id string) (*domain.Watcher, error)
	ListWatchers(ctx context.Context, q *WatcherQuery) ([]domain.Watcher, int, error)
	DeleteWatcher(ctx context.Context, id string) error

	// Subscriptions
	GetSubscription(ctx context.Context, email string) (*domain.Subscription, error)
	InsertSubscription(ctx context.Context, s *domain.Subscription) (inserted bool, err error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error)
	AttachChannel(ctx context.Context, email, channelRef, subscriptionRef string) (attached bool, err error)

	// Products
	UpsertProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, productURL string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProductPriceIfEqual(
		ctx context.Context,
		productURL string,
		expected, next *int64,
	) (updated bool, err error)

	// Task queue
	EnqueueTasks(ctx context.Context, tasks []domain.Task) error
	ClaimTasks(ctx context.Context, holder string, limit int, lease time.Duration) ([]QueuedTask, error)
	DeleteTask(ctx context.Context, id int64, holder string) error
	CountPendingTasks(ctx context.Context) (int, error)

	// Scheduler
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
