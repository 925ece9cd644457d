package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgents is the browser User-Agent rotation used when none is
// configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// HTTPProvider fetches product pages over HTTP and parses them with goquery.
// A page is recognized by its <link rel="canonical"> host.
type HTTPProvider struct {
	client      *http.Client
	userAgents  []string
	next        atomic.Uint64
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// HTTPOption configures the HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = hc
	}
}

// WithUserAgents sets the User-Agent rotation. An empty list keeps the
// default.
func WithUserAgents(agents []string) HTTPOption {
	return func(p *HTTPProvider) {
		if len(agents) > 0 {
			p.userAgents = agents
		}
	}
}

// WithRateLimiter makes every fetch wait for its host's token bucket.
func WithRateLimiter(r *RateLimiter) HTTPOption {
	return func(p *HTTPProvider) {
		p.rateLimiter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(p *HTTPProvider) {
		p.log = l
	}
}

// NewHTTPProvider creates a provider.
func NewHTTPProvider(opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		client:     &http.Client{Timeout: 30 * time.Second},
		userAgents: DefaultUserAgents,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch downloads rawURL and extracts its details. URLs outside the
// supported sites are rejected before any request is made. Network failures
// and 5xx or 429 responses are ErrUnreachable; anything that is not a
// recognized product page is ErrInvalidSource.
func (p *HTTPProvider) Fetch(ctx context.Context, rawURL string) (*Details, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidSource, rawURL)
	}
	if !Supported(u.Hostname()) {
		return nil, fmt.Errorf("%w: unsupported site %s", ErrInvalidSource, u.Hostname())
	}

	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrInvalidSource, err)
	}
	req.Header.Set("User-Agent", p.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrInvalidSource, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading page: %w", ErrUnreachable, err)
	}

	canonical := strings.TrimSpace(doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))
	cu, err := url.Parse(canonical)
	if canonical == "" || err != nil {
		return nil, fmt.Errorf("%w: no canonical link", ErrInvalidSource)
	}
	parse, ok := parsers[cu.Hostname()]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported site %s", ErrInvalidSource, cu.Hostname())
	}

	title, price, err := parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	p.log.Debug("product page fetched", "url", canonical, "title", title, "available", price != nil)
	return &Details{URL: canonical, Title: title, Price: price}, nil
}

func (p *HTTPProvider) userAgent() string {
	n := p.next.Add(1) - 1
	return p.userAgents[n%uint64(len(p.userAgents))]
}
