package adobesign

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate. Acrobat Sign caps
	// integrations well below this, but bursts are what trip the limiter.
	ProactiveRate = 2.0

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles requests ahead of the provider's limits and
// backs off when the provider says so.
type RateLimiter struct {
	mu         sync.Mutex
	retryUntil time.Time
	bucket     *rate.Limiter
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		// Burst covers one snapshot's worth of endpoint calls.
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), 4),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	retryUntil := r.retryUntil
	r.mu.Unlock()

	if time.Now().Before(retryUntil) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryUntil)):
		}
	}
	return nil
}

// UpdateFromResponse records a provider-imposed pause from the
// Retry-After header of a throttled response.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	retryAfter := resp.Header.Get(HeaderRetryAfter)
	if retryAfter == "" {
		return
	}
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil {
		return
	}

	r.mu.Lock()
	r.retryUntil = time.Now().Add(time.Duration(seconds) * time.Second)
	r.mu.Unlock()
}

// RetryUntil returns the current provider-imposed pause deadline.
func (r *RateLimiter) RetryUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryUntil
}
