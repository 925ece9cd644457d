//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bt_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testWatcher(email, url string) *domain.Watcher {
	return &domain.Watcher{
		ID:           domain.WatcherID(email, url),
		Email:        email,
		ProductURL:   url,
		ProductTitle: "Redmi Note 13 5G (Arctic White, 8GB RAM, 256GB Storage)",
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_WatcherCRUD(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	w := testWatcher("a@example.com", "https://www.amazon.in/dp/B0CQPHX3H2")

	t.Run("insert", func(t *testing.T) {
		inserted, err := s.InsertWatcher(ctx, w)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.False(t, w.CreatedAt.IsZero())
	})

	t.Run("duplicate is not inserted", func(t *testing.T) {
		dup := testWatcher("a@example.com", "https://www.amazon.in/dp/B0CQPHX3H2")
		inserted, err := s.InsertWatcher(ctx, dup)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("same pair under a foreign id is not inserted", func(t *testing.T) {
		dup := testWatcher("a@example.com", "https://www.amazon.in/dp/B0CQPHX3H2")
		dup.ID = "legacy-id"
		inserted, err := s.InsertWatcher(ctx, dup)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("get", func(t *testing.T) {
		got, err := s.GetWatcher(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, w.ProductTitle, got.ProductTitle)
	})

	t.Run("list by email and product", func(t *testing.T) {
		_, err := s.InsertWatcher(ctx, testWatcher("b@example.com", w.ProductURL))
		require.NoError(t, err)

		email := "a@example.com"
		byEmail, total, err := s.ListWatchers(ctx, &store.WatcherQuery{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, byEmail, 1)

		url := w.ProductURL
		byProduct, total, err := s.ListWatchers(ctx, &store.WatcherQuery{ProductURL: &url, Unbounded: true})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, byProduct, 2)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.DeleteWatcher(ctx, w.ID))
		require.NoError(t, s.DeleteWatcher(ctx, w.ID))

		_, err := s.GetWatcher(ctx, w.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPostgresStore_Subscription(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.GetSubscription(ctx, "a@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	sub := &domain.Subscription{
		Email:      "a@example.com",
		Subscribed: true,
		ChannelRef: "arn:aws:sns:ap-south-1:000000000000:a-example-com",
	}
	inserted, err := s.InsertSubscription(ctx, sub)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertSubscription(ctx, &domain.Subscription{
		Email: "a@example.com", Subscribed: true, ChannelRef: "other",
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	updated, err := s.SetSubscribed(ctx, "a@example.com", false)
	require.NoError(t, err)
	assert.False(t, updated.Subscribed)
	assert.Equal(t, sub.ChannelRef, updated.ChannelRef)
	assert.Empty(t, updated.SubscriptionRef)

	attached, err := s.AttachChannel(ctx, "a@example.com", "other", "sub")
	require.NoError(t, err)
	assert.False(t, attached, "channel already set")

	_, err = s.InsertSubscription(ctx, &domain.Subscription{Email: "legacy@example.com", Subscribed: true})
	require.NoError(t, err)
	attached, err = s.AttachChannel(ctx, "legacy@example.com", "arn:legacy", "arn:legacy:sub")
	require.NoError(t, err)
	assert.True(t, attached)

	legacy, err := s.GetSubscription(ctx, "legacy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "arn:legacy", legacy.ChannelRef)
	assert.Equal(t, "arn:legacy:sub", legacy.SubscriptionRef)
}

func TestPostgresStore_ProductCompareAndSwap(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	const url = "https://www.flipkart.com/redmi-note-13/p/itm123"

	require.NoError(t, s.UpsertProduct(ctx, &domain.Product{ProductURL: url, ProductTitle: "Redmi"}))

	t.Run("null matches null", func(t *testing.T) {
		ok, err := s.UpdateProductPriceIfEqual(ctx, url, nil, domain.Price(17999))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale expected loses", func(t *testing.T) {
		ok, err := s.UpdateProductPriceIfEqual(ctx, url, nil, domain.Price(15999))
		require.NoError(t, err)
		assert.False(t, ok)

		p, err := s.GetProduct(ctx, url)
		require.NoError(t, err)
		require.NotNil(t, p.LatestPrice)
		assert.Equal(t, int64(17999), *p.LatestPrice)
	})

	t.Run("concurrent writers have one winner", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.UpdateProductPriceIfEqual(ctx, url, domain.Price(17999), domain.Price(int64(16000+i)))
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("list", func(t *testing.T) {
		products, err := s.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, url, products[0].ProductURL)
	})
}

func TestPostgresStore_TaskQueue(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.EnqueueTasks(ctx, []domain.Task{
		{ProductURL: "u1", ProductTitle: "one", LatestPrice: domain.Price(10)},
		{ProductURL: "u2", ProductTitle: "two"},
	}))

	claimed, err := s.ClaimTasks(ctx, "w1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, "u1", claimed[0].Task.ProductURL)
	require.NotNil(t, claimed[0].Task.LatestPrice)
	assert.Equal(t, int64(10), *claimed[0].Task.LatestPrice)
	assert.Nil(t, claimed[1].Task.LatestPrice)

	none, err := s.ClaimTasks(ctx, "w2", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteTask(ctx, claimed[0].ID, "w1"))

	time.Sleep(100 * time.Millisecond)
	again, err := s.ClaimTasks(ctx, "w2", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "u2", again[0].Task.ProductURL)
	assert.Equal(t, 2, again[0].Attempts)

	n, err := s.CountPendingTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresStore_SchedulerLockAndJobRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	ok, err := s.AcquireSchedulerLock(ctx, "distribute", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcquireSchedulerLock(ctx, "distribute", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ReleaseSchedulerLock(ctx, "distribute", "a"))

	id, err := s.InsertJobRun(ctx, "distribute")
	require.NoError(t, err)
	require.NoError(t, s.CompleteJobRun(ctx, id, "succeeded", "", 3))

	runs, err := s.ListJobRuns(ctx, "distribute", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "succeeded", runs[0].Status)

	latest, err := s.ListLatestJobRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}
