package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const (
	defaultPoolSize = 10

	// constraintWatcherPair is the default name Postgres gives
	// UNIQUE (email, product_url) on watchers.
	constraintWatcherPair = "watchers_email_product_url_key"
)

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// Its methods are exercised against a real database by the integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
// A pool_max_conns setting in connString takes precedence over the default.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// InsertWatcher inserts w unless a watcher with the same id already exists.
// It reports whether the row was written.
func (s *PostgresStore) InsertWatcher(ctx context.Context, w *domain.Watcher) (bool, error) {
	args := pgx.NamedArgs{
		"id":            w.ID,
		"email":         w.Email,
		"product_url":   w.ProductURL,
		"product_title": w.ProductTitle,
	}

	err := s.pool.QueryRow(ctx, queryInsertWatcher, args).Scan(&w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // ON CONFLICT DO NOTHING returned no row
	}
	if isUniqueViolationOnConstraint(err, constraintWatcherPair) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting watcher: %w", err)
	}
	return true, nil
}

// GetWatcher retrieves a watcher by id.
func (s *PostgresStore) GetWatcher(ctx context.Context, id string) (*domain.Watcher, error) {
	w := &domain.Watcher{}
	err := scanWatcher(s.pool.QueryRow(ctx, queryGetWatcher, id), w)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting watcher: %w", err)
	}
	return w, nil
}

// ListWatchers queries watchers with optional filters, returning results and
// the total count before paging.
func (s *PostgresStore) ListWatchers(
	ctx context.Context,
	q *WatcherQuery,
) ([]domain.Watcher, int, error) {
	if q == nil {
		q = &WatcherQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting watchers: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying watchers: %w", err)
	}
	defer rows.Close()

	var watchers []domain.Watcher
	for rows.Next() {
		var w domain.Watcher
		if err := scanWatcher(rows, &w); err != nil {
			return nil, 0, fmt.Errorf("scanning watcher: %w", err)
		}
		watchers = append(watchers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating watchers: %w", err)
	}

	return watchers, total, nil
}

// DeleteWatcher removes a watcher. Deleting a missing id is not an error.
func (s *PostgresStore) DeleteWatcher(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteWatcher, id); err != nil {
		return fmt.Errorf("deleting watcher: %w", err)
	}
	return nil
}

// GetSubscription retrieves the subscription for a normalized email.
func (s *PostgresStore) GetSubscription(
	ctx context.Context,
	email string,
) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	err := scanSubscription(s.pool.QueryRow(ctx, queryGetSubscription, email), sub)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	return sub, nil
}

// InsertSubscription inserts sub unless a row for the email already exists.
// It reports whether the row was written.
func (s *PostgresStore) InsertSubscription(
	ctx context.Context,
	sub *domain.Subscription,
) (bool, error) {
	args := pgx.NamedArgs{
		"email":            sub.Email,
		"subscribed":       sub.Subscribed,
		"channel_ref":      sub.ChannelRef,
		"subscription_ref": sub.SubscriptionRef,
	}

	err := s.pool.QueryRow(ctx, queryInsertSubscription, args).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting subscription: %w", err)
	}
	return true, nil
}

// SetSubscribed updates the opt-in flag and returns the updated row.
func (s *PostgresStore) SetSubscribed(
	ctx context.Context,
	email string,
	subscribed bool,
) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	err := scanSubscription(s.pool.QueryRow(ctx, querySetSubscribed, email, subscribed), sub)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating subscription: %w", err)
	}
	return sub, nil
}

// AttachChannel sets the channel of a subscription that has none. It
// reports false when the row is missing or already has a channel.
func (s *PostgresStore) AttachChannel(
	ctx context.Context,
	email, channelRef, subscriptionRef string,
) (bool, error) {
	tag, err := s.pool.Exec(ctx, queryAttachChannel, email, channelRef, subscriptionRef)
	if err != nil {
		return false, fmt.Errorf("attaching channel: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpsertProduct writes title and price unconditionally.
func (s *PostgresStore) UpsertProduct(ctx context.Context, p *domain.Product) error {
	args := pgx.NamedArgs{
		"product_url":   p.ProductURL,
		"product_title": p.ProductTitle,
		"latest_price":  p.LatestPrice,
	}

	if err := s.pool.QueryRow(ctx, queryUpsertProduct, args).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upserting product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by canonical URL.
func (s *PostgresStore) GetProduct(ctx context.Context, productURL string) (*domain.Product, error) {
	p := &domain.Product{}
	err := scanProduct(s.pool.QueryRow(ctx, queryGetProduct, productURL), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// ListProducts returns every product ordered by URL.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, queryListProducts)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// UpdateProductPriceIfEqual sets latest_price to next only when the stored
// price still equals expected. It reports whether the row changed.
func (s *PostgresStore) UpdateProductPriceIfEqual(
	ctx context.Context,
	productURL string,
	expected, next *int64,
) (bool, error) {
	tag, err := s.pool.Exec(ctx, queryUpdateProductPriceIfEqual, productURL, expected, next)
	if err != nil {
		return false, fmt.Errorf("updating product price: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// EnqueueTasks appends tasks to the tasks table in one statement.
func (s *PostgresStore) EnqueueTasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	payloads := make([]string, len(tasks))
	for i := range tasks {
		b, err := json.Marshal(tasks[i])
		if err != nil {
			return fmt.Errorf("encoding task: %w", err)
		}
		payloads[i] = string(b)
	}

	if _, err := s.pool.Exec(ctx, queryEnqueueTasks, payloads); err != nil {
		return fmt.Errorf("enqueueing tasks: %w", err)
	}
	return nil
}

// ClaimTasks leases up to limit available tasks to holder. Tasks whose lease
// expired without an ack become available again.
func (s *PostgresStore) ClaimTasks(
	ctx context.Context,
	holder string,
	limit int,
	lease time.Duration,
) ([]QueuedTask, error) {
	rows, err := s.pool.Query(ctx, queryClaimTasks, holder, limit, time.Now().Add(lease))
	if err != nil {
		return nil, fmt.Errorf("claiming tasks: %w", err)
	}
	defer rows.Close()

	var claimed []QueuedTask
	for rows.Next() {
		var (
			qt      QueuedTask
			payload []byte
		)
		if err := rows.Scan(&qt.ID, &payload, &qt.Attempts, &qt.EnqueuedAt, &qt.LeasedBy); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		if err := json.Unmarshal(payload, &qt.Task); err != nil {
			return nil, fmt.Errorf("decoding task %d: %w", qt.ID, err)
		}
		claimed = append(claimed, qt)
	}

	return claimed, rows.Err()
}

// DeleteTask acknowledges a task. A lease that has since passed to another
// holder is left alone.
func (s *PostgresStore) DeleteTask(ctx context.Context, id int64, holder string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteTask, id, holder); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// CountPendingTasks returns the number of tasks not yet acknowledged.
func (s *PostgresStore) CountPendingTasks(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, queryCountPendingTasks).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// InsertJobRun records the start of a scheduled job and returns its UUID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run as finished with the given status and metadata.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	_, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText, rowsAffected)
	if err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListJobRuns returns the most recent runs for a specific job, newest first.
func (s *PostgresStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListJobRuns, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// ListLatestJobRuns returns the single most recent run for each distinct job name.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListLatestJobRuns)
	if err != nil {
		return nil, fmt.Errorf("querying latest job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// RecoverStaleJobRuns marks any 'running' job rows older than olderThan as 'crashed',
// then deletes all rows older than 30 days. Returns the number of rows marked as crashed.
func (s *PostgresStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("marking stale job runs crashed: %w", err)
	}
	affected := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldJobRuns); err != nil {
		return affected, fmt.Errorf("deleting old job runs: %w", err)
	}

	return affected, nil
}

// AcquireSchedulerLock attempts to acquire a distributed lock for the given job.
// Returns true if the lock was acquired, false if another holder already owns it.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	expiresAt := time.Now().Add(ttl)

	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, expiresAt).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // lock held by another; conflict not replaced
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	_, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder)
	if err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}

// scanJobRuns scans rows from a job_runs query into a slice.
func scanJobRuns(rows pgx.Rows) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func isUniqueViolationOnConstraint(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanWatcher(row scannable, w *domain.Watcher) error {
	return row.Scan(&w.ID, &w.Email, &w.ProductURL, &w.ProductTitle, &w.CreatedAt)
}

func scanSubscription(row scannable, sub *domain.Subscription) error {
	return row.Scan(
		&sub.Email, &sub.Subscribed, &sub.ChannelRef, &sub.SubscriptionRef,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
}

func scanProduct(row scannable, p *domain.Product) error {
	return row.Scan(&p.ProductURL, &p.ProductTitle, &p.LatestPrice, &p.UpdatedAt)
}
