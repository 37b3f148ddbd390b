package pacing

import (
	"context"
	"testing"
	"time"
)

// TestWaitSpacesRequests ensures successive waits honor the interval.
func TestWaitSpacesRequests(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: 50 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait error = %v", err)
		}
	}
	// First token is free; the next two must each wait ~50ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected pacing to take >= 80ms, took %v", elapsed)
	}
}

// TestWaitUnlimitedWhenDisabled checks zero interval means no pacing.
func TestWaitUnlimitedWhenDisabled(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("unlimited limiter waited %v", elapsed)
	}
}

// TestWaitHonorsCancelledContext verifies cancellation unblocks Wait.
func TestWaitHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait error = %v", err)
	}
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
