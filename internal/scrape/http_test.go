package scrape_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/scrape"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
)

const amazonPage = `<html><head>
<link rel="canonical" href="https://www.amazon.in/Redmi-Note-13/dp/B0CQPHX3H2" />
</head><body>
<span id="productTitle">
    Redmi Note 13 5G (Arctic White, 8GB RAM, 256GB Storage)
</span>
<div id="availability"><span>In stock</span></div>
<span id="priceblock_ourprice">₹ 19,999.00</span>
</body></html>`

const amazonDealPage = `<html><head>
<link rel="canonical" href="https://www.amazon.in/dp/B0DEAL" />
</head><body>
<span id="productTitle">Deal Kettle</span>
<div id="availability"><span>In stock</span></div>
<span id="priceblock_dealprice">₹ 899.50</span>
<span id="priceblock_ourprice">₹ 1,299.00</span>
</body></html>`

const amazonUnavailablePage = `<html><head>
<link rel="canonical" href="https://www.amazon.in/dp/B0GONE" />
</head><body>
<span id="productTitle">Sold Out Blender</span>
<div id="availability"><span>
  Currently unavailable.
</span></div>
</body></html>`

const flipkartPage = `<html><head>
<link rel="canonical" href="https://www.flipkart.com/redmi-note-13/p/itm123" />
</head><body>
<span class="_35KyD6">  REDMI Note 13 5G (Arctic White, 256 GB)  </span>
<div class="_1vC4OE _3qQ9m1">₹17,999</div>
</body></html>`

const flipkartNewLayoutPage = `<html><head>
<link rel="canonical" href="https://www.flipkart.com/kettle/p/itm456" />
</head><body>
<span class="VU-ZEz">Kettle</span>
<div class="Nx9bqj CxhGGd">₹1,049</div>
</body></html>`

const otherSitePage = `<html><head>
<link rel="canonical" href="https://www.example.com/item/1" />
</head><body><h1>Not a store</h1></body></html>`

const noCanonicalPage = `<html><body><h1>Hello</h1></body></html>`

const amazonNoPricePage = `<html><head>
<link rel="canonical" href="https://www.amazon.in/dp/B0X" />
</head><body>
<span id="productTitle">Mystery</span>
<div id="availability"><span>In stock</span></div>
</body></html>`

// storeURL is a supported-site URL that siteClient routes to the test server.
const storeURL = "http://www.amazon.in"

// siteClient returns a client that dials addr whatever host a request names.
func siteClient(addr string) *http.Client {
	dialer := &net.Dialer{Timeout: time.Second}
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
}

func newSite(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	pages := map[string]string{
		"/amazon":             amazonPage,
		"/amazon-deal":        amazonDealPage,
		"/amazon-unavailable": amazonUnavailablePage,
		"/amazon-no-price":    amazonNoPricePage,
		"/flipkart":           flipkartPage,
		"/flipkart-new":       flipkartNewLayoutPage,
		"/other":              otherSitePage,
		"/plain":              noCanonicalPage,
	}

	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()

		switch r.URL.Path {
		case "/throttled":
			w.WriteHeader(http.StatusTooManyRequests)
			return
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv, &agents
}

func TestHTTPProvider_Fetch(t *testing.T) {
	t.Parallel()

	srv, _ := newSite(t)
	p := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(siteClient(srv.Listener.Addr().String())),
		scrape.WithLogger(logger.Discard()),
	)

	price := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		path    string
		want    *scrape.Details
		wantErr error
	}{
		{
			name: "amazon regular price",
			path: "/amazon",
			want: &scrape.Details{
				URL:   "https://www.amazon.in/Redmi-Note-13/dp/B0CQPHX3H2",
				Title: "Redmi Note 13 5G (Arctic White, 8GB RAM, 256GB Storage)",
				Price: price(19999),
			},
		},
		{
			name: "amazon deal price wins and fraction is truncated",
			path: "/amazon-deal",
			want: &scrape.Details{URL: "https://www.amazon.in/dp/B0DEAL", Title: "Deal Kettle", Price: price(899)},
		},
		{
			name: "amazon currently unavailable has no price",
			path: "/amazon-unavailable",
			want: &scrape.Details{URL: "https://www.amazon.in/dp/B0GONE", Title: "Sold Out Blender"},
		},
		{
			name: "flipkart",
			path: "/flipkart",
			want: &scrape.Details{
				URL:   "https://www.flipkart.com/redmi-note-13/p/itm123",
				Title: "REDMI Note 13 5G (Arctic White, 256 GB)",
				Price: price(17999),
			},
		},
		{
			name: "flipkart new layout",
			path: "/flipkart-new",
			want: &scrape.Details{URL: "https://www.flipkart.com/kettle/p/itm456", Title: "Kettle", Price: price(1049)},
		},
		{name: "unsupported site", path: "/other", wantErr: scrape.ErrInvalidSource},
		{name: "no canonical link", path: "/plain", wantErr: scrape.ErrInvalidSource},
		{name: "price missing", path: "/amazon-no-price", wantErr: scrape.ErrInvalidSource},
		{name: "not found", path: "/missing", wantErr: scrape.ErrInvalidSource},
		{name: "throttled", path: "/throttled", wantErr: scrape.ErrUnreachable},
		{name: "server error", path: "/broken", wantErr: scrape.ErrUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := p.Fetch(context.Background(), storeURL+tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPProvider_RejectsNonHTTPURLs(t *testing.T) {
	t.Parallel()

	p := scrape.NewHTTPProvider(scrape.WithLogger(logger.Discard()))
	for _, raw := range []string{"", "ftp://www.amazon.in/dp/1", "not a url", "https://"} {
		_, err := p.Fetch(context.Background(), raw)
		require.ErrorIs(t, err, scrape.ErrInvalidSource, raw)
	}
}

func TestHTTPProvider_RejectsUnsupportedHostsWithoutRequesting(t *testing.T) {
	t.Parallel()

	srv, hits := newSite(t)
	p := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(siteClient(srv.Listener.Addr().String())),
		scrape.WithRateLimiter(scrape.NewRateLimiter(0.001, 1)),
		scrape.WithLogger(logger.Discard()),
	)

	for _, raw := range []string{
		srv.URL + "/amazon",
		"http://169.254.169.254/latest/meta-data/",
		"http://metadata.internal/amazon",
		"https://www.amazon.in.attacker.example/amazon",
	} {
		_, err := p.Fetch(context.Background(), raw)
		require.ErrorIs(t, err, scrape.ErrInvalidSource, raw)
	}
	assert.Empty(t, *hits)

	// The limiter's single token is still available for a supported host.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := p.Fetch(ctx, storeURL+"/amazon")
	require.NoError(t, err)
	assert.Len(t, *hits, 1)
}

func TestHTTPProvider_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.Listener.Addr().String()
	srv.Close()

	p := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(siteClient(addr)),
		scrape.WithLogger(logger.Discard()),
	)
	_, err := p.Fetch(context.Background(), storeURL+"/amazon")
	require.ErrorIs(t, err, scrape.ErrUnreachable)
}

func TestHTTPProvider_RotatesUserAgents(t *testing.T) {
	t.Parallel()

	srv, agents := newSite(t)
	p := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(siteClient(srv.Listener.Addr().String())),
		scrape.WithUserAgents([]string{"ua-1", "ua-2"}),
		scrape.WithLogger(logger.Discard()),
	)

	for range 3 {
		_, err := p.Fetch(context.Background(), storeURL+"/amazon")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"ua-1", "ua-2", "ua-1"}, *agents)
}

func TestHTTPProvider_RateLimiterHonorsContext(t *testing.T) {
	t.Parallel()

	srv, _ := newSite(t)
	rl := scrape.NewRateLimiter(0.001, 1)
	p := scrape.NewHTTPProvider(
		scrape.WithHTTPClient(siteClient(srv.Listener.Addr().String())),
		scrape.WithRateLimiter(rl),
		scrape.WithLogger(logger.Discard()),
	)

	_, err := p.Fetch(context.Background(), storeURL+"/amazon")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Fetch(ctx, storeURL+"/amazon")
	require.ErrorIs(t, err, scrape.ErrUnreachable)
}
