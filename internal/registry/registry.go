// Package registry owns watcher records: one per (email, product URL) pair,
// keyed by a content hash of the normalized pair.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

var (
	// ErrDuplicateWatcher is returned when the (email, product URL) pair is
	// already tracked.
	ErrDuplicateWatcher = errors.New("already tracked")
	// ErrInvalidWatcher is returned when the email or product URL is empty.
	ErrInvalidWatcher = errors.New("email and product url are required")
	// ErrNotFound is returned by GetByID for unknown ids.
	ErrNotFound = store.ErrNotFound
)

// WatcherStore is the persistence the registry needs.
type WatcherStore interface {
	InsertWatcher(ctx context.Context, w *domain.Watcher) (bool, error)
	GetWatcher(ctx context.Context, id string) (*domain.Watcher, error)
	ListWatchers(ctx context.Context, q *store.WatcherQuery) ([]domain.Watcher, int, error)
	DeleteWatcher(ctx context.Context, id string) error
}

// Registry creates, lists and deletes watchers.
type Registry struct {
	store WatcherStore
}

// New returns a Registry backed by s.
func New(s WatcherStore) *Registry {
	return &Registry{store: s}
}

// WatcherID returns the deterministic id for an (email, product URL) pair.
func WatcherID(email, productURL string) string {
	return domain.WatcherID(email, productURL)
}

// Create stores a new watcher. Re-adding an existing pair fails with
// ErrDuplicateWatcher and leaves the stored watcher untouched.
func (r *Registry) Create(ctx context.Context, email, productURL, title string) (*domain.Watcher, error) {
	email = domain.NormalizeEmail(email)
	productURL = strings.TrimSpace(productURL)
	if email == "" || productURL == "" {
		return nil, ErrInvalidWatcher
	}

	w := &domain.Watcher{
		ID:           WatcherID(email, productURL),
		Email:        email,
		ProductURL:   productURL,
		ProductTitle: title,
	}

	inserted, err := r.store.InsertWatcher(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if !inserted {
		return nil, ErrDuplicateWatcher
	}
	return w, nil
}

// List returns a page of watchers matching q and the unpaged total.
func (r *Registry) List(ctx context.Context, q *store.WatcherQuery) ([]domain.Watcher, int, error) {
	if q != nil && q.Email != nil {
		normalized := *q
		email := domain.NormalizeEmail(*q.Email)
		normalized.Email = &email
		q = &normalized
	}
	watchers, total, err := r.store.ListWatchers(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("listing watchers: %w", err)
	}
	return watchers, total, nil
}

// ListByEmail returns every watcher owned by email.
func (r *Registry) ListByEmail(ctx context.Context, email string) ([]domain.Watcher, error) {
	watchers, _, err := r.List(ctx, &store.WatcherQuery{Email: &email, Unbounded: true})
	return watchers, err
}

// ListByProduct returns every watcher of productURL.
func (r *Registry) ListByProduct(ctx context.Context, productURL string) ([]domain.Watcher, error) {
	watchers, _, err := r.List(ctx, &store.WatcherQuery{ProductURL: &productURL, Unbounded: true})
	return watchers, err
}

// GetByID returns the watcher with id, or ErrNotFound.
func (r *Registry) GetByID(ctx context.Context, id string) (*domain.Watcher, error) {
	w, err := r.store.GetWatcher(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting watcher %s: %w", id, err)
	}
	return w, nil
}

// DeleteByID removes a watcher. Unknown ids are not an error.
func (r *Registry) DeleteByID(ctx context.Context, id string) error {
	if err := r.store.DeleteWatcher(ctx, id); err != nil {
		return fmt.Errorf("deleting watcher %s: %w", id, err)
	}
	return nil
}
