package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
	"github.com/donaldgifford/bargain-tracker/internal/notify"
	"github.com/donaldgifford/bargain-tracker/internal/scrape"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

type fetchResult struct {
	details *scrape.Details
	err     error
}

// BatchCache holds what one worker learned while processing one batch of
// deliveries: fetch results by product URL and channel refs by email.
// Duplicate tasks for a product in the same batch share one fetch. The
// opt-in flag is not cached; it is read for every task. A BatchCache is not
// safe for concurrent use; each worker creates its own per batch.
type BatchCache struct {
	fetches  map[string]fetchResult
	channels map[string]string
}

// NewBatchCache returns an empty cache.
func NewBatchCache() *BatchCache {
	return &BatchCache{
		fetches:  make(map[string]fetchResult),
		channels: make(map[string]string),
	}
}

// recipient is one email to notify and its channel (empty when the
// subscription has none yet).
type recipient struct {
	email      string
	channelRef string
}

// Process runs one monitoring task to a terminal outcome. An error means
// the task could not be evaluated (store unavailable before any
// notification went out) and should be redelivered; every other failure is
// reported in the Outcome.
func (eng *Engine) Process(ctx context.Context, task domain.Task, cache *BatchCache) (domain.Outcome, error) {
	if cache == nil {
		cache = NewBatchCache()
	}

	ctx, span := eng.tracer.Start(ctx, "engine.process_task",
		trace.WithAttributes(attribute.String("product.url", task.ProductURL)),
	)
	defer span.End()

	out, err := eng.process(ctx, task, cache)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	span.SetAttributes(
		attribute.String("task.outcome", string(out.Kind)),
		attribute.Int("task.notified", out.Notified),
		attribute.Bool("task.write_lost", out.WriteLost),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
	}
	span.SetStatus(codes.Ok, "completed")
	metrics.TaskOutcomesTotal.WithLabelValues(string(out.Kind)).Inc()
	return out, nil
}

func (eng *Engine) process(ctx context.Context, task domain.Task, cache *BatchCache) (domain.Outcome, error) {
	watchers, err := eng.watchers.ListByProduct(ctx, task.ProductURL)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("listing watchers of %s: %w", task.ProductURL, err)
	}
	if len(watchers) == 0 {
		eng.log.Debug("no watchers", "url", task.ProductURL)
		return domain.Outcome{Kind: domain.OutcomeNoWatchers, OldPrice: task.LatestPrice}, nil
	}

	recipients, err := eng.notifiable(ctx, watchers, cache)
	if err != nil {
		return domain.Outcome{}, err
	}

	details, err := eng.fetch(ctx, task.ProductURL, cache)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		eng.log.Warn("fetch failed", "url", task.ProductURL, "error", err)
		return domain.Outcome{Kind: domain.OutcomeFetchFailed, OldPrice: task.LatestPrice, Err: err}, nil
	}

	if domain.PriceEqual(task.LatestPrice, details.Price) {
		return domain.Outcome{
			Kind:     domain.OutcomePriceUnchanged,
			OldPrice: task.LatestPrice,
			NewPrice: details.Price,
		}, nil
	}

	title := task.ProductTitle
	if title == "" {
		title = details.Title
	}
	msg := notify.NewPriceChangeMessage(title, task.ProductURL, task.LatestPrice, details.Price)

	out := domain.Outcome{
		Kind:     domain.OutcomeNotified,
		OldPrice: task.LatestPrice,
		NewPrice: details.Price,
	}
	for _, r := range recipients {
		if eng.deliver(ctx, r, msg, cache) {
			out.Notified++
		}
	}

	applied, err := eng.products.UpdatePriceIfChanged(ctx, task.ProductURL, task.LatestPrice, details.Price)
	switch {
	case err != nil:
		eng.log.Error("price update failed", "url", task.ProductURL, "error", err)
		out.Err = err
	case !applied:
		out.WriteLost = true
		metrics.ConditionalWriteLostTotal.Inc()
		eng.log.Info("price already moved by another writer",
			"url", task.ProductURL,
			"snapshot", domain.FormatPrice(task.LatestPrice),
			"observed", domain.FormatPrice(details.Price),
		)
	}

	eng.log.Info("price changed",
		"url", task.ProductURL,
		"old", domain.FormatPrice(task.LatestPrice),
		"new", domain.FormatPrice(details.Price),
		"notified", out.Notified,
		"recipients", len(recipients),
	)
	return out, nil
}

// notifiable returns one recipient per distinct subscribed email, in
// watcher order. Emails without a subscription row are tracked but silent.
func (eng *Engine) notifiable(
	ctx context.Context,
	watchers []domain.Watcher,
	cache *BatchCache,
) ([]recipient, error) {
	seen := make(map[string]bool, len(watchers))
	var out []recipient
	for i := range watchers {
		email := domain.NormalizeEmail(watchers[i].Email)
		if seen[email] {
			continue
		}
		seen[email] = true

		sub, err := eng.subscription(ctx, email)
		if err != nil {
			return nil, err
		}
		if sub == nil || !sub.Subscribed {
			continue
		}
		ref := sub.ChannelRef
		if ref == "" {
			ref = cache.channels[email]
		}
		out = append(out, recipient{email: email, channelRef: ref})
	}
	return out, nil
}

// subscription returns email's current subscription, or nil when it has none.
func (eng *Engine) subscription(ctx context.Context, email string) (*domain.Subscription, error) {
	sub, err := eng.subscriptions.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading subscription of %s: %w", email, err)
	}
	return sub, nil
}

func (eng *Engine) fetch(ctx context.Context, productURL string, cache *BatchCache) (*scrape.Details, error) {
	if r, ok := cache.fetches[productURL]; ok {
		return r.details, r.err
	}

	start := time.Now()
	details, err := eng.provider.Fetch(ctx, productURL)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	cache.fetches[productURL] = fetchResult{details: details, err: err}
	return details, err
}

// deliver publishes msg to r's channel, creating the channel first when the
// subscription lacks one. Failures are logged and counted.
func (eng *Engine) deliver(ctx context.Context, r recipient, msg notify.Message, cache *BatchCache) bool {
	ref := r.channelRef
	if ref == "" {
		var err error
		ref, err = eng.subscriptions.EnsureChannel(ctx, r.email)
		if err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(notify.ErrorCode(err)).Inc()
			eng.log.Warn("notification channel unavailable", "email", r.email, "error", err)
			return false
		}
		cache.channels[r.email] = ref
	}

	if err := eng.channels.Publish(ctx, ref, msg); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(notify.ErrorCode(err)).Inc()
		eng.log.Warn("notification failed", "email", r.email, "channel", ref, "error", err)
		return false
	}
	metrics.NotificationsSentTotal.Inc()
	return true
}
