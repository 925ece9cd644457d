// Package catalog holds the canonical per-URL product record shared by every
// watcher of that product.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// ErrNotFound is returned by Get for unknown product URLs.
var ErrNotFound = store.ErrNotFound

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, productURL string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProductPriceIfEqual(ctx context.Context, productURL string, expected, next *int64) (bool, error)
}

// Catalog reads and writes products.
type Catalog struct {
	store ProductStore
}

// New returns a Catalog backed by s.
func New(s ProductStore) *Catalog {
	return &Catalog{store: s}
}

// Upsert writes title and price unconditionally. Only the add-watcher path
// calls it; monitoring changes prices through UpdatePriceIfChanged.
func (c *Catalog) Upsert(ctx context.Context, productURL, title string, price *int64) (*domain.Product, error) {
	p := &domain.Product{
		ProductURL:   strings.TrimSpace(productURL),
		ProductTitle: title,
		LatestPrice:  price,
	}
	if err := c.store.UpsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("upserting product %s: %w", p.ProductURL, err)
	}
	return p, nil
}

// Get returns the product for productURL, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, productURL string) (*domain.Product, error) {
	p, err := c.store.GetProduct(ctx, strings.TrimSpace(productURL))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting product %s: %w", productURL, err)
	}
	return p, nil
}

// ListAll returns every product.
func (c *Catalog) ListAll(ctx context.Context) ([]domain.Product, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// UpdatePriceIfChanged applies newPrice only if the stored price still equals
// oldPrice, and reports whether it did. A false result with a nil error means
// another writer moved the price first.
func (c *Catalog) UpdatePriceIfChanged(ctx context.Context, productURL string, oldPrice, newPrice *int64) (bool, error) {
	ok, err := c.store.UpdateProductPriceIfEqual(ctx, productURL, oldPrice, newPrice)
	if err != nil {
		return false, fmt.Errorf("updating price of %s: %w", productURL, err)
	}
	return ok, nil
}
