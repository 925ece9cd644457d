package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

// ListProducts returns the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.get(ctx, "/api/v1/products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct returns the catalog entry for productURL.
func (c *Client) GetProduct(ctx context.Context, productURL string) (*domain.Product, error) {
	var resp productsResponse
	if err := c.get(ctx, "/api/v1/products?product_url="+url.QueryEscape(productURL), &resp); err != nil {
		return nil, err
	}
	if len(resp.Products) == 0 {
		return nil, &APIError{Status: 404, Detail: "not found"}
	}
	return &resp.Products[0], nil
}
