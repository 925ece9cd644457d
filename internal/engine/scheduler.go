package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
)

// JobDistribute is the job name of catalog distribution runs.
const JobDistribute = "distribute"

// staleJobAge is how long a job run may stay "running" before startup marks
// it crashed.
const staleJobAge = 2 * time.Hour

// ErrJobRunning is returned when another holder owns the job's lock.
var ErrJobRunning = errors.New("job already running")

// JobStore records job runs and arbitrates the per-job lock between
// replicas.
type JobStore interface {
	InsertJobRun(ctx context.Context, jobName string) (string, error)
	CompleteJobRun(ctx context.Context, id, status, errText string, rowsAffected int) error
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName, holder string) error
}

// Scheduler runs distribution on a fixed interval. Every run, scheduled or
// manual, holds the job lock and is recorded as a job run.
type Scheduler struct {
	cron    *cron.Cron
	engine  *Engine
	store   JobStore
	log     *slog.Logger
	holder  string
	lockTTL time.Duration

	distributionEntryID cron.EntryID
}

// NewScheduler creates a new Scheduler that distributes every interval.
func NewScheduler(
	eng *Engine,
	s JobStore,
	distributionInterval time.Duration,
	lockTTL time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	if distributionInterval <= 0 {
		return nil, fmt.Errorf("distribution interval must be positive, got %s", distributionInterval)
	}

	c := cron.New()

	sched := &Scheduler{
		cron:    c,
		engine:  eng,
		store:   s,
		log:     log,
		holder:  uuid.NewString(),
		lockTTL: lockTTL,
	}

	id, err := c.AddFunc("@every "+distributionInterval.String(), sched.runScheduledDistribution)
	if err != nil {
		return nil, fmt.Errorf("scheduling distribution: %w", err)
	}
	sched.distributionEntryID = id

	return sched, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps publishes the next distribution time as a gauge.
func (s *Scheduler) SyncNextRunTimestamps() {
	next := s.cron.Entry(s.distributionEntryID).Next
	if !next.IsZero() {
		metrics.SchedulerNextDistributionTimestamp.Set(float64(next.Unix()))
	}
}

// RecoverStaleJobRuns marks runs left "running" by a crashed process.
func (s *Scheduler) RecoverStaleJobRuns(ctx context.Context) {
	n, err := s.store.RecoverStaleJobRuns(ctx, staleJobAge)
	if err != nil {
		s.log.Error("recovering stale job runs", "error", err)
		return
	}
	if n > 0 {
		s.log.Warn("marked stale job runs as crashed", "count", n)
	}
}

// RunDistribution distributes now, under the job lock. It returns
// ErrJobRunning when another run holds the lock.
func (s *Scheduler) RunDistribution(ctx context.Context) (int, error) {
	return s.runJob(ctx, JobDistribute, s.lockTTL, s.engine.Distribute)
}

func (s *Scheduler) runScheduledDistribution() {
	ctx := context.Background()
	s.log.Info("scheduled distribution starting")

	n, err := s.RunDistribution(ctx)
	switch {
	case errors.Is(err, ErrJobRunning):
		s.log.Info("scheduled distribution skipped, another replica holds the lock")
	case err != nil:
		s.log.Error("scheduled distribution failed", "error", err)
	default:
		s.log.Info("scheduled distribution finished", "tasks", n)
	}
	s.SyncNextRunTimestamps()
}

func (s *Scheduler) runJob(
	ctx context.Context,
	name string,
	ttl time.Duration,
	fn func(context.Context) (int, error),
) (int, error) {
	acquired, err := s.store.AcquireSchedulerLock(ctx, name, s.holder, ttl)
	if err != nil {
		return 0, fmt.Errorf("acquiring %s lock: %w", name, err)
	}
	if !acquired {
		return 0, ErrJobRunning
	}
	defer func() {
		if err := s.store.ReleaseSchedulerLock(context.WithoutCancel(ctx), name, s.holder); err != nil {
			s.log.Warn("releasing job lock", "job", name, "error", err)
		}
	}()

	runID, err := s.store.InsertJobRun(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("recording %s run: %w", name, err)
	}

	rows, jobErr := fn(ctx)

	status, errText := "succeeded", ""
	if jobErr != nil {
		status, errText = "failed", jobErr.Error()
	}
	if err := s.store.CompleteJobRun(context.WithoutCancel(ctx), runID, status, errText, rows); err != nil {
		s.log.Error("completing job run", "job", name, "run", runID, "error", err)
	}
	return rows, jobErr
}
