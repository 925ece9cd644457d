package catalog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/catalog"
	"github.com/donaldgifford/bargain-tracker/internal/store/memstore"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const productURL = "https://www.flipkart.com/redmi-note-13/p/itm123"

func TestUpsertAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := catalog.New(memstore.New())

	_, err := c.Get(ctx, productURL)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = c.Upsert(ctx, productURL, "Redmi Note 13", domain.Price(17999))
	require.NoError(t, err)

	// Unavailable price on re-add keeps the title fresh and clears the price.
	_, err = c.Upsert(ctx, " "+productURL+" ", "Redmi Note 13 5G", nil)
	require.NoError(t, err)

	p, err := c.Get(ctx, productURL)
	require.NoError(t, err)
	assert.Equal(t, "Redmi Note 13 5G", p.ProductTitle)
	assert.Nil(t, p.LatestPrice)

	all, err := c.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// Two tasks snapshot the same price and observe the same new price; exactly
// one compare-and-swap lands and the stored price is the winner's value.
func TestUpdatePriceIfChanged_ConcurrentSameSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := catalog.New(memstore.New())

	_, err := c.Upsert(ctx, productURL, "t", domain.Price(100))
	require.NoError(t, err)

	results := make([]bool, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.UpdatePriceIfChanged(ctx, productURL, domain.Price(100), domain.Price(90))
			assert.NoError(t, err)
			results[i] = ok
		}()
	}
	wg.Wait()

	assert.NotEqual(t, results[0], results[1], "exactly one writer wins")

	p, err := c.Get(ctx, productURL)
	require.NoError(t, err)
	require.NotNil(t, p.LatestPrice)
	assert.Equal(t, int64(90), *p.LatestPrice)
}

func TestUpdatePriceIfChanged_UnknownProduct(t *testing.T) {
	t.Parallel()
	c := catalog.New(memstore.New())

	ok, err := c.UpdatePriceIfChanged(context.Background(), productURL, nil, domain.Price(1))
	require.NoError(t, err)
	assert.False(t, ok)
}
