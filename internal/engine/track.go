package engine

import (
	"context"
	"fmt"

	"github.com/donaldgifford/bargain-tracker/internal/registry"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// Track starts watching a product for email. The page is fetched first so
// the watcher and catalog row use the canonical URL and current title and
// price; then the email's channel is ensured (re-subscribing an email that
// had opted out), the product upserted and the watcher created. Errors from the provider (scrape.ErrInvalidSource,
// scrape.ErrUnreachable), the subscription manager and the registry
// (registry.ErrDuplicateWatcher) are returned wrapped.
func (eng *Engine) Track(ctx context.Context, email, productURL string) (*domain.Watcher, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || productURL == "" {
		return nil, registry.ErrInvalidWatcher
	}

	details, err := eng.provider.Fetch(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", productURL, err)
	}

	if _, err := eng.subscriptions.EnsureChannel(ctx, email); err != nil {
		return nil, err
	}
	sub, err := eng.subscriptions.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !sub.Subscribed {
		if _, err := eng.subscriptions.SetSubscribed(ctx, email, true); err != nil {
			return nil, err
		}
		eng.log.Info("email re-subscribed", "email", email)
	}

	if _, err := eng.products.Upsert(ctx, details.URL, details.Title, details.Price); err != nil {
		return nil, err
	}

	w, err := eng.watchers.Create(ctx, email, details.URL, details.Title)
	if err != nil {
		return nil, err
	}

	eng.log.Info("watcher created", "id", w.ID, "email", email, "url", details.URL,
		"price", domain.FormatPrice(details.Price))
	return w, nil
}
