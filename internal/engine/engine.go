// Package engine runs the monitoring pipeline: distributing one task per
// catalog product, processing tasks (fetch, compare, notify, conditional
// price update), the worker pool that drains the queue and the scheduler
// that drives distribution.
package engine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/bargain-tracker/internal/notify"
	"github.com/donaldgifford/bargain-tracker/internal/queue"
	"github.com/donaldgifford/bargain-tracker/internal/scrape"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const tracerName = "github.com/donaldgifford/bargain-tracker/internal/engine"

// Watchers is the watcher registry as the engine uses it.
type Watchers interface {
	Create(ctx context.Context, email, productURL, title string) (*domain.Watcher, error)
	ListByProduct(ctx context.Context, productURL string) ([]domain.Watcher, error)
}

// Products is the product catalog as the engine uses it.
type Products interface {
	Upsert(ctx context.Context, productURL, title string, price *int64) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	UpdatePriceIfChanged(ctx context.Context, productURL string, oldPrice, newPrice *int64) (bool, error)
}

// Subscriptions is the subscription manager as the engine uses it.
type Subscriptions interface {
	Get(ctx context.Context, email string) (*domain.Subscription, error)
	EnsureChannel(ctx context.Context, email string) (string, error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error)
}

// Engine wires the pipeline's collaborators together.
type Engine struct {
	watchers      Watchers
	products      Products
	subscriptions Subscriptions
	channels      notify.ChannelService
	provider      scrape.Provider
	queue         queue.Queue
	log           *slog.Logger
	tracer        trace.Tracer
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	w Watchers,
	p Products,
	s Subscriptions,
	ch notify.ChannelService,
	provider scrape.Provider,
	q queue.Queue,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		watchers:      w,
		products:      p,
		subscriptions: s,
		channels:      ch,
		provider:      provider,
		queue:         q,
		log:           slog.Default(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTracerProvider takes the engine's tracer from tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}
