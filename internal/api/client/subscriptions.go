package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// GetSubscription returns the subscription of email.
func (c *Client) GetSubscription(ctx context.Context, email string) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := c.get(ctx, "/api/v1/subscriptions/"+url.PathEscape(email), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetSubscription subscribes or unsubscribes email.
func (c *Client) SetSubscription(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error) {
	body := map[string]bool{"subscribed": subscribed}

	var sub domain.Subscription
	if err := c.put(ctx, "/api/v1/subscriptions/"+url.PathEscape(email), body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
