package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/bargain-tracker/internal/awsclient"
	"github.com/donaldgifford/bargain-tracker/internal/catalog"
	"github.com/donaldgifford/bargain-tracker/internal/config"
	"github.com/donaldgifford/bargain-tracker/internal/engine"
	"github.com/donaldgifford/bargain-tracker/internal/notify"
	"github.com/donaldgifford/bargain-tracker/internal/queue"
	"github.com/donaldgifford/bargain-tracker/internal/registry"
	"github.com/donaldgifford/bargain-tracker/internal/scrape"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	"github.com/donaldgifford/bargain-tracker/internal/store/memstore"
	"github.com/donaldgifford/bargain-tracker/internal/subscription"
	"github.com/donaldgifford/bargain-tracker/internal/telemetry"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
)

// app holds every long-lived component built from the configuration.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	store     store.Store
	queue     queue.Queue
	registry  *registry.Registry
	catalog   *catalog.Catalog
	subs      *subscription.Manager
	engine    *engine.Engine
	scheduler *engine.Scheduler
	telemetry *telemetry.Providers

	closers []func()
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		log: logger.New(cfg.Logging.Level, cfg.Logging.Format),
	}

	if err := a.build(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context) error {
	var err error

	a.telemetry, err = telemetry.Setup(ctx, &a.cfg.Telemetry, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}

	channels, err := a.channels(ctx)
	if err != nil {
		return err
	}

	a.queue, err = a.openQueue(ctx)
	if err != nil {
		return err
	}

	provider := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(&http.Client{Timeout: a.cfg.Scraper.Timeout}),
		scrape.WithUserAgents(a.cfg.Scraper.UserAgents),
		scrape.WithRateLimiter(scrape.NewRateLimiter(
			a.cfg.Scraper.RateLimit.PerSecond,
			a.cfg.Scraper.RateLimit.Burst,
		)),
		scrape.WithLogger(logger.Component(a.log, "scrape")),
	)

	a.registry = registry.New(a.store)
	a.catalog = catalog.New(a.store)
	a.subs = subscription.New(a.store, channels,
		subscription.WithLogger(logger.Component(a.log, "subscription")))

	a.engine = engine.NewEngine(a.registry, a.catalog, a.subs, channels, provider, a.queue,
		engine.WithLogger(logger.Component(a.log, "engine")),
		engine.WithTracerProvider(a.telemetry.TracerProvider),
	)

	a.scheduler, err = engine.NewScheduler(a.engine, a.store,
		a.cfg.Schedule.DistributionInterval,
		a.cfg.Schedule.LockTTL,
		logger.Component(a.log, "scheduler"),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	return nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.StoreBackendMemory:
		a.log.Warn("using in-memory store; state is lost on exit")
		a.store = memstore.New()
	default:
		pg, err := store.NewPostgresStore(ctx, a.cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		a.store = pg
	}
	return nil
}

func (a *app) channels(ctx context.Context) (notify.ChannelService, error) {
	log := logger.Component(a.log, "notify")
	if a.cfg.Channels.Backend != config.ChannelBackendSNS {
		return notify.NewLogChannels(log), nil
	}

	awsCfg, err := awsclient.Load(ctx, a.cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return notify.NewSNSChannels(awsclient.NewSNS(awsCfg),
		notify.WithTopicPrefix(a.cfg.Channels.SNS.TopicPrefix),
		notify.WithProtocol(a.cfg.Channels.SNS.Protocol),
		notify.WithLogger(log),
	), nil
}

func (a *app) openQueue(ctx context.Context) (queue.Queue, error) {
	if a.cfg.Queue.Backend != config.QueueBackendSQS {
		return queue.NewPostgresQueue(a.store, a.cfg.Queue.Lease), nil
	}

	awsCfg, err := awsclient.Load(ctx, a.cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return queue.NewSQSQueue(awsclient.NewSQS(awsCfg), a.cfg.Queue.SQS.QueueURL,
		queue.WithWaitTime(a.cfg.Queue.SQS.WaitTime),
		queue.WithVisibilityTimeout(a.cfg.Queue.SQS.VisibilityTimeout),
		queue.WithLogger(logger.Component(a.log, "queue")),
	), nil
}

func (a *app) pool() *engine.Pool {
	return engine.NewPool(a.engine, a.queue,
		engine.WithWorkers(a.cfg.Schedule.Workers),
		engine.WithBatchSize(a.cfg.Queue.BatchSize),
		engine.WithPollInterval(a.cfg.Schedule.PollInterval),
		engine.WithPoolLogger(logger.Component(a.log, "worker")),
	)
}

func (a *app) close(ctx context.Context) {
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("telemetry shutdown", "error", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
