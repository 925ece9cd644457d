// Package memstore is an in-memory implementation of store.Store. It keeps the
// same conditional-write semantics as the Postgres store (insert-if-absent,
// price compare-and-swap, leased task claims) behind a single mutex, and is
// used by tests and single-process local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

var _ store.Store = (*Store)(nil)

const jobRunRetention = 30 * 24 * time.Hour

type taskRow struct {
	queued      store.QueuedTask
	leasedUntil time.Time
}

type lockRow struct {
	holder    string
	expiresAt time.Time
}

// Store is a concurrency-safe in-memory store.Store.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	watchers      map[string]domain.Watcher
	subscriptions map[string]domain.Subscription
	products      map[string]domain.Product

	tasks      []*taskRow
	nextTaskID int64

	jobRuns []domain.JobRun
	locks   map[string]lockRow
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for lease and lock expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		watchers:      make(map[string]domain.Watcher),
		subscriptions: make(map[string]domain.Subscription),
		products:      make(map[string]domain.Product),
		locks:         make(map[string]lockRow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds.
func (*Store) Ping(context.Context) error { return nil }

// Migrate is a no-op.
func (*Store) Migrate(context.Context) error { return nil }

// InsertWatcher stores w unless its id, or its (email, product) pair, exists.
func (s *Store) InsertWatcher(_ context.Context, w *domain.Watcher) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.watchers[w.ID]; ok {
		return false, nil
	}
	for _, existing := range s.watchers {
		if existing.Email == w.Email && existing.ProductURL == w.ProductURL {
			return false, nil
		}
	}

	w.CreatedAt = s.now()
	s.watchers[w.ID] = *w
	return true, nil
}

// GetWatcher returns the watcher with the given id.
func (s *Store) GetWatcher(_ context.Context, id string) (*domain.Watcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.watchers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &w, nil
}

// ListWatchers filters, orders and pages watchers the way the SQL query does.
func (s *Store) ListWatchers(_ context.Context, q *store.WatcherQuery) ([]domain.Watcher, int, error) {
	if q == nil {
		q = &store.WatcherQuery{}
	}

	s.mu.Lock()
	var matched []domain.Watcher
	for _, w := range s.watchers {
		if q.Email != nil && w.Email != *q.Email {
			continue
		}
		if q.ProductURL != nil && w.ProductURL != *q.ProductURL {
			continue
		}
		matched = append(matched, w)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.OrderBy == "product_title" && a.ProductTitle != b.ProductTitle {
			return a.ProductTitle < b.ProductTitle
		}
		if q.OrderBy != "product_title" && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return store.Page(q, matched), len(matched), nil
}

// DeleteWatcher removes a watcher if present.
func (s *Store) DeleteWatcher(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.watchers, id)
	return nil
}

// GetSubscription returns the subscription for email.
func (s *Store) GetSubscription(_ context.Context, email string) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sub, nil
}

// InsertSubscription stores sub unless the email already has a row.
func (s *Store) InsertSubscription(_ context.Context, sub *domain.Subscription) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.Email]; ok {
		return false, nil
	}

	now := s.now()
	sub.CreatedAt, sub.UpdatedAt = now, now
	s.subscriptions[sub.Email] = *sub
	return true, nil
}

// SetSubscribed flips the opt-in flag of an existing subscription.
func (s *Store) SetSubscribed(_ context.Context, email string, subscribed bool) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	sub.Subscribed = subscribed
	sub.UpdatedAt = s.now()
	s.subscriptions[email] = sub
	return &sub, nil
}

// AttachChannel sets the channel of a subscription that has none.
func (s *Store) AttachChannel(_ context.Context, email, channelRef, subscriptionRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[email]
	if !ok || sub.ChannelRef != "" {
		return false, nil
	}
	sub.ChannelRef = channelRef
	sub.SubscriptionRef = subscriptionRef
	sub.UpdatedAt = s.now()
	s.subscriptions[email] = sub
	return true, nil
}

// UpsertProduct writes title and price unconditionally.
func (s *Store) UpsertProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = s.now()
	stored := *p
	stored.LatestPrice = clonePrice(p.LatestPrice)
	s.products[p.ProductURL] = stored
	return nil
}

// GetProduct returns the product for productURL.
func (s *Store) GetProduct(_ context.Context, productURL string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productURL]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.LatestPrice = clonePrice(p.LatestPrice)
	return &p, nil
}

// ListProducts returns every product ordered by URL.
func (s *Store) ListProducts(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		p.LatestPrice = clonePrice(p.LatestPrice)
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductURL < products[j].ProductURL
	})
	return products, nil
}

// UpdateProductPriceIfEqual swaps the stored price to next when it still
// equals expected.
func (s *Store) UpdateProductPriceIfEqual(
	_ context.Context,
	productURL string,
	expected, next *int64,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productURL]
	if !ok || !domain.PriceEqual(p.LatestPrice, expected) {
		return false, nil
	}
	p.LatestPrice = clonePrice(next)
	p.UpdatedAt = s.now()
	s.products[productURL] = p
	return true, nil
}

// EnqueueTasks appends tasks in order.
func (s *Store) EnqueueTasks(_ context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, t := range tasks {
		s.nextTaskID++
		t.LatestPrice = clonePrice(t.LatestPrice)
		s.tasks = append(s.tasks, &taskRow{
			queued: store.QueuedTask{ID: s.nextTaskID, Task: t, EnqueuedAt: now},
		})
	}
	return nil
}

// ClaimTasks leases up to limit tasks whose lease is absent or expired.
func (s *Store) ClaimTasks(
	_ context.Context,
	holder string,
	limit int,
	lease time.Duration,
) ([]store.QueuedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var claimed []store.QueuedTask
	for _, row := range s.tasks {
		if len(claimed) >= limit {
			break
		}
		if row.queued.LeasedBy != "" && now.Before(row.leasedUntil) {
			continue
		}
		row.queued.LeasedBy = holder
		row.queued.Attempts++
		row.leasedUntil = now.Add(lease)

		qt := row.queued
		qt.Task.LatestPrice = clonePrice(qt.Task.LatestPrice)
		claimed = append(claimed, qt)
	}
	return claimed, nil
}

// DeleteTask removes a task still leased by holder.
func (s *Store) DeleteTask(_ context.Context, id int64, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.tasks {
		if row.queued.ID == id && row.queued.LeasedBy == holder {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// CountPendingTasks returns the number of unacknowledged tasks.
func (s *Store) CountPendingTasks(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks), nil
}

// InsertJobRun records a running job and returns its id.
func (s *Store) InsertJobRun(_ context.Context, jobName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.jobRuns = append(s.jobRuns, domain.JobRun{
		ID:        id,
		JobName:   jobName,
		StartedAt: s.now(),
		Status:    "running",
	})
	return id, nil
}

// CompleteJobRun finishes the job run with the given id.
func (s *Store) CompleteJobRun(
	_ context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobRuns {
		if s.jobRuns[i].ID != id {
			continue
		}
		now := s.now()
		rows := rowsAffected
		s.jobRuns[i].CompletedAt = &now
		s.jobRuns[i].Status = status
		s.jobRuns[i].ErrorText = errText
		s.jobRuns[i].RowsAffected = &rows
		return nil
	}
	return nil
}

// ListJobRuns returns up to limit runs of jobName, newest first.
func (s *Store) ListJobRuns(_ context.Context, jobName string, limit int) ([]domain.JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var runs []domain.JobRun
	for i := len(s.jobRuns) - 1; i >= 0 && len(runs) < limit; i-- {
		if s.jobRuns[i].JobName == jobName {
			runs = append(runs, s.jobRuns[i])
		}
	}
	return runs, nil
}

// ListLatestJobRuns returns the newest run of every job, ordered by job name.
func (s *Store) ListLatestJobRuns(context.Context) ([]domain.JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := make(map[string]domain.JobRun)
	for _, r := range s.jobRuns {
		latest[r.JobName] = r
	}

	runs := make([]domain.JobRun, 0, len(latest))
	for _, r := range latest {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].JobName < runs[j].JobName })
	return runs, nil
}

// RecoverStaleJobRuns marks running rows older than olderThan as crashed and
// drops rows past retention.
func (s *Store) RecoverStaleJobRuns(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-olderThan)
	crashed := 0

	kept := s.jobRuns[:0]
	for _, r := range s.jobRuns {
		if r.Status == "running" && r.StartedAt.Before(cutoff) {
			r.Status = "crashed"
			r.CompletedAt = &now
			crashed++
		}
		if r.StartedAt.Before(now.Add(-jobRunRetention)) {
			continue
		}
		kept = append(kept, r)
	}
	s.jobRuns = kept
	return crashed, nil
}

// AcquireSchedulerLock takes the lock for jobName unless an unexpired holder
// owns it.
func (s *Store) AcquireSchedulerLock(
	_ context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, ok := s.locks[jobName]; ok && !l.expiresAt.Before(now) {
		return false, nil
	}
	s.locks[jobName] = lockRow{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseSchedulerLock drops the lock if holder owns it.
func (s *Store) ReleaseSchedulerLock(_ context.Context, jobName string, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[jobName]; ok && l.holder == holder {
		delete(s.locks, jobName)
	}
	return nil
}

func clonePrice(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
