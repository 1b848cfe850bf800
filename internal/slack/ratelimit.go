package slack

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls the frequency of requests to the Web API.
type RateLimiter struct {
	// main limiter, shared across all methods
	limiter *rate.Limiter

	// additional pause after an HTTP 429 with Retry-After
	retryAfterUntil time.Time
	mu              sync.Mutex
}

// NewRateLimiter creates a rate limiter.
// rps - requests per second, burst - allowed burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// DefaultRateLimiter returns a limiter sized for Tier 3 Web API methods
// (conversations.members, conversations.replies run at ~50/min).
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(2.0, 2)
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	waitUntil := r.retryAfterUntil
	r.mu.Unlock()

	if time.Now().Before(waitUntil) {
		select {
		case <-time.After(time.Until(waitUntil)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetRetryAfter sets a pause after a rate-limited response. The request
// that hit the limit still fails; only subsequent requests are delayed.
func (r *RateLimiter) SetRetryAfter(seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.retryAfterUntil = time.Now().Add(time.Duration(seconds) * time.Second)
}
