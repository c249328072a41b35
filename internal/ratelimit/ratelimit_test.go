package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	limiter := NewLimiterWithConfig(Config{RequestsPerSecond: 1, BurstSize: 2})

	if !limiter.Allow() {
		t.Fatal("first request should be allowed")
	}
	if !limiter.Allow() {
		t.Fatal("second request should be within burst")
	}
	if limiter.Allow() {
		t.Fatal("third request should exceed burst")
	}
}

func TestLimiterBackoff(t *testing.T) {
	limiter := NewLimiterWithConfig(Config{RequestsPerSecond: 100, BurstSize: 100})

	limiter.RecordRateLimitError(60)
	if limiter.Allow() {
		t.Fatal("requests should be blocked during backoff")
	}
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	limiter := NewLimiterWithConfig(Config{RequestsPerSecond: 0.001, BurstSize: 1})

	// Exhaust the burst
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	wantErr := errors.New("persistent")
	calls := 0
	err := Retry(context.Background(), 2, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	wantErr := errors.New("invalid API key")
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return Permanent(wantErr)
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call for a permanent error, got %d", calls)
	}
}

func TestRetryStopsOnContextErrorFromFn(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestPermanentPreservesErrorChain(t *testing.T) {
	sentinel := errors.New("model not found")
	wrapped := Permanent(sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Fatal("Permanent should preserve the wrapped error chain")
	}
	if Permanent(nil) != nil {
		t.Fatal("Permanent(nil) should be nil")
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{
		429: true,
		500: true,
		503: true,
		400: false,
		401: false,
		404: false,
		200: false,
	} {
		if got := RetryableStatus(code); got != want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 3, func() error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls on cancelled context, got %d", calls)
	}
}
