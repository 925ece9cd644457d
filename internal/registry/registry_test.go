package registry_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/registry"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	"github.com/donaldgifford/bargain-tracker/internal/store/memstore"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const productURL = "https://www.amazon.in/dp/B0CQPHX3H2"

func TestCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		url     string
		wantErr error
	}{
		{name: "valid", email: "User@Example.com", url: productURL},
		{name: "empty email", email: "  ", url: productURL, wantErr: registry.ErrInvalidWatcher},
		{name: "empty url", email: "a@example.com", url: "", wantErr: registry.ErrInvalidWatcher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := registry.New(memstore.New())

			w, err := r.Create(context.Background(), tt.email, tt.url, "Title")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user@example.com", w.Email)
			assert.Equal(t, registry.WatcherID("user@example.com", productURL), w.ID)
		})
	}
}

func TestCreate_DuplicateRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.New()
	r := registry.New(s)

	first, err := r.Create(ctx, "a@example.com", productURL, "Original title")
	require.NoError(t, err)

	_, err = r.Create(ctx, " A@example.com ", productURL, "Changed title")
	require.ErrorIs(t, err, registry.ErrDuplicateWatcher)

	watchers, err := r.ListByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, watchers, 1)
	assert.Equal(t, first.ID, watchers[0].ID)
	assert.Equal(t, "Original title", watchers[0].ProductTitle, "duplicate must not overwrite")
}

func TestCreate_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := registry.New(memstore.New())

	var created, dup atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(ctx, "a@example.com", productURL, "t")
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, registry.ErrDuplicateWatcher):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(15), dup.Load())
}

func TestListByProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := registry.New(memstore.New())

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := r.Create(ctx, email, productURL, "t")
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, "a@example.com", productURL+"-other", "t")
	require.NoError(t, err)

	watchers, err := r.ListByProduct(ctx, productURL)
	require.NoError(t, err)
	assert.Len(t, watchers, 2)
}

func TestList_NormalizesEmailFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := registry.New(memstore.New())

	_, err := r.Create(ctx, "a@example.com", productURL, "t")
	require.NoError(t, err)

	email := "A@EXAMPLE.COM"
	q := &store.WatcherQuery{Email: &email}
	watchers, total, err := r.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, watchers, 1)
	assert.Equal(t, "A@EXAMPLE.COM", *q.Email, "caller query is not mutated")
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := registry.New(memstore.New())

	w, err := r.Create(ctx, "a@example.com", productURL, "t")
	require.NoError(t, err)

	got, err := r.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ProductURL, got.ProductURL)

	require.NoError(t, r.DeleteByID(ctx, w.ID))
	require.NoError(t, r.DeleteByID(ctx, w.ID), "delete is idempotent")

	_, err = r.GetByID(ctx, w.ID)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

type failingStore struct{ memstore.Store }

func (*failingStore) InsertWatcher(context.Context, *domain.Watcher) (bool, error) {
	return false, errors.New("connection reset")
}

func TestCreate_StoreErrorIsNotDuplicate(t *testing.T) {
	t.Parallel()
	r := registry.New(&failingStore{})

	_, err := r.Create(context.Background(), "a@example.com", productURL, "t")
	require.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrDuplicateWatcher)
	assert.Contains(t, err.Error(), "connection reset")
}
