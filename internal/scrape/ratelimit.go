package scrape

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per site host so a slow crawl of one
// retailer never starves another.
type RateLimiter struct {
	perSecond float64
	burst     int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter allowing perSecond requests per host with
// the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		perSecond: perSecond,
		burst:     burst,
		hosts:     make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed, or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	if err := r.limiter(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (r *RateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.hosts[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.perSecond), r.burst)
		r.hosts[host] = l
	}
	return l
}
