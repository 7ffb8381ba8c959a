package github

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// RateLimiterStats provides statistics about rate limiter usage
type RateLimiterStats struct {
	RemainingRequests int           `json:"remaining_requests"`
	ResetTime         time.Time     `json:"reset_time"`
	CurrentDelay      time.Duration `json:"current_delay"`
	TotalWaits        int64         `json:"total_waits"`
	TotalDelayTime    time.Duration `json:"total_delay_time"`
}

// RateLimiterConfig configures how requests are paced
type RateLimiterConfig struct {
	// BaseDelay is the minimum spacing between requests; zero disables it
	BaseDelay time.Duration

	// MaxDelay caps any single wait
	MaxDelay time.Duration

	// MinRemainingRequests is the threshold below which requests are throttled
	MinRemainingRequests int

	// ThrottleDelay is the wait applied as the remaining budget approaches zero
	ThrottleDelay time.Duration

	// Jitter adds up to this fraction of the delay at random
	Jitter float64
}

// DefaultRateLimiterConfig returns a default rate limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxDelay:             30 * time.Second,
		MinRemainingRequests: 100,
		ThrottleDelay:        2 * time.Second,
		Jitter:               0.1,
	}
}

// RateLimiter paces API calls using the rate limit headers of previous
// responses. It is safe for concurrent use by batch workers.
type RateLimiter struct {
	config *RateLimiterConfig

	mu        sync.Mutex
	known     bool
	remaining int
	resetTime time.Time
	lastCall  time.Time
	stats     RateLimiterStats
	rand      *rand.Rand
	now       func() time.Time
}

// NewRateLimiter creates a rate limiter; a nil config uses the defaults
func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	return &RateLimiter{
		config: config,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Wait blocks until it's safe to make an API call
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	delay := rl.calculateDelay()
	if delay > 0 {
		rl.stats.TotalWaits++
		rl.stats.TotalDelayTime += delay
	}
	rl.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	rl.mu.Lock()
	rl.lastCall = rl.now()
	rl.mu.Unlock()
	return nil
}

// Observe records the rate limit headers of a response. Responses without
// them leave the limiter unchanged.
func (rl *RateLimiter) Observe(header http.Header) {
	remaining, err := strconv.Atoi(header.Get(headerRateRemaining))
	if err != nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.known = true
	rl.remaining = remaining
	if reset, err := strconv.ParseInt(header.Get(headerRateReset), 10, 64); err == nil {
		rl.resetTime = time.Unix(reset, 0)
	}
	rl.stats.RemainingRequests = remaining
	rl.stats.ResetTime = rl.resetTime
}

// Delay returns the wait the next call would incur
func (rl *RateLimiter) Delay() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.calculateDelay()
}

// Stats returns current rate limiter statistics
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := rl.stats
	stats.CurrentDelay = rl.calculateDelay()
	return stats
}

// calculateDelay must be called with mu held
func (rl *RateLimiter) calculateDelay() time.Duration {
	now := rl.now()
	var delay time.Duration

	if rl.config.BaseDelay > 0 && !rl.lastCall.IsZero() {
		if since := now.Sub(rl.lastCall); since < rl.config.BaseDelay {
			delay = rl.config.BaseDelay - since
		}
	}

	// Throttling only applies inside the current window
	if rl.known && now.Before(rl.resetTime) && rl.remaining < rl.config.MinRemainingRequests {
		delay = max(delay, rl.throttleDelay(now))
	}

	if rl.config.Jitter > 0 && delay > 0 {
		delay += time.Duration(rl.rand.Float64() * float64(delay) * rl.config.Jitter)
	}

	if rl.config.MaxDelay > 0 {
		delay = min(delay, rl.config.MaxDelay)
	}
	return delay
}

func (rl *RateLimiter) throttleDelay(now time.Time) time.Duration {
	if rl.remaining <= 0 {
		return rl.resetTime.Sub(now)
	}

	// Fewer remaining requests means a longer wait, up to ThrottleDelay
	ratio := float64(rl.remaining) / float64(rl.config.MinRemainingRequests)
	return time.Duration(float64(rl.config.ThrottleDelay) * (1 - ratio))
}

// rateLimitTransport waits on the limiter before each request and feeds it
// the headers of each response
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *RateLimiter
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		t.limiter.Observe(resp.Header)
	}
	return resp, err
}

// rateLimitedHTTPClient returns a copy of base whose transport goes through limiter
func rateLimitedHTTPClient(base *http.Client, limiter *RateLimiter) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	limited := *base
	limited.Transport = &rateLimitTransport{base: transport, limiter: limiter}
	return &limited
}
