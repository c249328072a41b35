// Package ratelimit paces outbound calls to model provider APIs and
// retries transient failures with exponential backoff.
package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a provider API for rate limiting purposes.
type ServiceType string

const (
	// ServiceEmbedding covers embedding requests.
	ServiceEmbedding ServiceType = "embedding"
	// ServiceCompletion covers chat completion requests.
	ServiceCompletion ServiceType = "completion"
)

// Config holds rate limiting configuration for a service.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultLimits provides conservative defaults for each provider service.
// These sit well below the published tier limits to avoid hitting quotas
// during a full project ingest.
var DefaultLimits = map[ServiceType]Config{
	ServiceEmbedding:  {RequestsPerSecond: 5.0, BurstSize: 10},
	ServiceCompletion: {RequestsPerSecond: 2.0, BurstSize: 4},
}

// Limiter paces requests to a provider API. It uses a token bucket with
// optional backoff for 429 responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service ServiceType
}

// NewLimiter creates a new limiter for the specified service.
func NewLimiter(service ServiceType) *Limiter {
	cfg, ok := DefaultLimits[service]
	if !ok {
		cfg = Config{RequestsPerSecond: 5.0, BurstSize: 10}
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		service: service,
	}
}

// NewLimiterWithConfig creates a limiter with custom configuration.
func NewLimiterWithConfig(cfg Config) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError records a rate limit error and sets a backoff period.
// Call this when receiving a 429 response from a provider.
func (l *Limiter) RecordRateLimitError(retryAfterSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfterSeconds <= 0 {
		// Default backoff: 60 seconds
		retryAfterSeconds = 60
	}

	l.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow checks if a request can be made immediately without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}

	return l.limiter.Allow()
}

// Retry defaults.
const (
	DefaultAttempts    = 3
	DefaultInitialWait = time.Second
)

// Permanent marks an error as non-retryable. Retry returns the wrapped
// error immediately instead of burning the remaining attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// RetryableStatus reports whether an HTTP status is worth retrying.
// Rate limiting and server errors are transient; other client errors
// (bad API key, malformed request, unknown model) never heal on retry.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Retry runs fn up to attempts times, doubling the wait between failures.
// Only transient errors are retried: errors marked with Permanent and
// context cancellations return immediately. The last error is returned
// when every attempt fails.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	wait := DefaultInitialWait
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
	return lastErr
}
