// Package subscription manages the per-email notification channel and the
// opt-in flag. A channel is created at most once per email: concurrent
// callers in one process share a single creation, and the conditional row
// insert settles races between processes.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/bargain-tracker/internal/metrics"
	"github.com/donaldgifford/bargain-tracker/internal/notify"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

var (
	// ErrChannelServiceUnavailable wraps every channel service failure.
	// Nothing is persisted when it is returned.
	ErrChannelServiceUnavailable = errors.New("notification channel service unavailable")
	// ErrInvalidEmail is returned for an empty email.
	ErrInvalidEmail = errors.New("email is required")
	// ErrNotFound is returned by Get when the email has no subscription.
	ErrNotFound = store.ErrNotFound
)

// SubscriptionStore is the persistence the manager needs.
type SubscriptionStore interface {
	GetSubscription(ctx context.Context, email string) (*domain.Subscription, error)
	InsertSubscription(ctx context.Context, s *domain.Subscription) (bool, error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error)
	AttachChannel(ctx context.Context, email, channelRef, subscriptionRef string) (bool, error)
}

// Manager creates and reuses notification channels.
type Manager struct {
	store    SubscriptionStore
	channels notify.ChannelService
	log      *slog.Logger
	group    singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// New returns a Manager.
func New(s SubscriptionStore, channels notify.ChannelService, opts ...Option) *Manager {
	m := &Manager{
		store:    s,
		channels: channels,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureChannel returns the channel ref for email, creating the channel,
// registering email on it and persisting the subscription on first use.
func (m *Manager) EnsureChannel(ctx context.Context, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidEmail
	}

	// The shared call outlives any one caller; each caller waits on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(email, func() (any, error) {
		sub, err := m.ensure(shared, email)
		if err != nil {
			return "", err
		}
		return sub.ChannelRef, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *Manager) ensure(ctx context.Context, email string) (*domain.Subscription, error) {
	existing, err := m.store.GetSubscription(ctx, email)
	switch {
	case err == nil && existing.ChannelRef != "":
		return existing, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("reading subscription for %s: %w", email, err)
	}

	channelRef, err := m.channels.CreateOrGetChannel(ctx, notify.ChannelName(email))
	if err != nil {
		return nil, fmt.Errorf("%w: creating channel for %s: %w", ErrChannelServiceUnavailable, email, err)
	}
	subscriptionRef, err := m.channels.Subscribe(ctx, channelRef, email)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing %s: %w", ErrChannelServiceUnavailable, email, err)
	}

	var written bool
	if existing != nil {
		written, err = m.store.AttachChannel(ctx, email, channelRef, subscriptionRef)
	} else {
		written, err = m.store.InsertSubscription(ctx, &domain.Subscription{
			Email:           email,
			Subscribed:      true,
			ChannelRef:      channelRef,
			SubscriptionRef: subscriptionRef,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("saving subscription for %s: %w", email, err)
	}

	// Losing the write means another process stored a channel first; use it.
	sub, err := m.store.GetSubscription(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("re-reading subscription for %s: %w", email, err)
	}
	if written {
		metrics.ChannelsCreatedTotal.Inc()
		m.log.Info("notification channel created", "email", email, "channel", channelRef)
	}
	return sub, nil
}

// SetSubscribed toggles the opt-in flag, creating the channel first when the
// email has none.
func (m *Manager) SetSubscribed(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error) {
	email = domain.NormalizeEmail(email)
	if _, err := m.EnsureChannel(ctx, email); err != nil {
		return nil, err
	}

	sub, err := m.store.SetSubscribed(ctx, email, subscribed)
	if err != nil {
		return nil, fmt.Errorf("updating subscription for %s: %w", email, err)
	}
	return sub, nil
}

// Get returns the subscription for email, or ErrNotFound.
func (m *Manager) Get(ctx context.Context, email string) (*domain.Subscription, error) {
	sub, err := m.store.GetSubscription(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting subscription for %s: %w", email, err)
	}
	return sub, nil
}
