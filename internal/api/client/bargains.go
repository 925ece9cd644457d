package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// BargainFilter narrows ListBargains. Zero values are ignored.
type BargainFilter struct {
	Email      string
	ProductURL string
	Limit      int
	Offset     int
	OrderBy    string
}

// BargainPage is one page of watchers.
type BargainPage struct {
	Bargains []domain.Watcher `json:"bargains"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListBargains returns watchers matching f.
func (c *Client) ListBargains(ctx context.Context, f BargainFilter) (*BargainPage, error) {
	q := url.Values{}
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if f.ProductURL != "" {
		q.Set("product_url", f.ProductURL)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.OrderBy != "" {
		q.Set("order_by", f.OrderBy)
	}

	path := "/api/v1/bargains"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page BargainPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBargain returns one watcher by id.
func (c *Client) GetBargain(ctx context.Context, id string) (*domain.Watcher, error) {
	var w domain.Watcher
	if err := c.get(ctx, "/api/v1/bargains/"+url.PathEscape(id), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// AddBargain tracks productURL for email.
func (c *Client) AddBargain(ctx context.Context, email, productURL string) (*domain.Watcher, error) {
	req := map[string]string{"email": email, "product_url": productURL}

	var w domain.Watcher
	if err := c.post(ctx, "/api/v1/bargains", req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteBargain stops tracking the watcher with id.
func (c *Client) DeleteBargain(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/bargains/"+url.PathEscape(id))
}
