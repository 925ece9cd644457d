package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/api/handlers"
	"github.com/donaldgifford/bargain-tracker/internal/notify"
	notifyMocks "github.com/donaldgifford/bargain-tracker/internal/notify/mocks"
	"github.com/donaldgifford/bargain-tracker/internal/store/memstore"
	"github.com/donaldgifford/bargain-tracker/internal/subscription"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
)

func newSubscriptionAPI(t *testing.T, channels notify.ChannelService) humatest.TestAPI {
	t.Helper()
	m := subscription.New(memstore.New(), channels, subscription.WithLogger(logger.Discard()))

	_, api := humatest.New(t)
	handlers.RegisterSubscriptionRoutes(api, handlers.NewSubscriptionHandler(m))
	return api
}

func TestSubscriptionHandler_SetAndGet(t *testing.T) {
	t.Parallel()

	api := newSubscriptionAPI(t, notify.NewLogChannels(logger.Discard()))

	resp := api.Get("/api/v1/subscriptions/a@example.com")
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Put("/api/v1/subscriptions/a@example.com", map[string]any{"subscribed": false})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"subscribed":false`)
	assert.Contains(t, resp.Body.String(), `"channel_ref":"log:a-example-com"`)

	resp = api.Put("/api/v1/subscriptions/A@Example.com", map[string]any{"subscribed": true})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/api/v1/subscriptions/a@example.com")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"subscribed":true`)
}

func TestSubscriptionHandler_ChannelServiceDown(t *testing.T) {
	t.Parallel()

	ch := notifyMocks.NewMockChannelService(t)
	ch.EXPECT().CreateOrGetChannel(mock.Anything, mock.Anything).Return("", errors.New("throttled"))

	api := newSubscriptionAPI(t, ch)

	resp := api.Put("/api/v1/subscriptions/a@example.com", map[string]any{"subscribed": true})
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = api.Get("/api/v1/subscriptions/a@example.com")
	assert.Equal(t, http.StatusNotFound, resp.Code, "nothing is stored on failure")
}

func TestSubscriptionHandler_GetStoreError(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterSubscriptionRoutes(api, handlers.NewSubscriptionHandler(brokenSubscriptions{}))

	resp := api.Get("/api/v1/subscriptions/a@example.com")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "getting subscription failed")
}
