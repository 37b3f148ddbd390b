// Package pacing implements a token bucket limiter spacing requests against
// the platform so catalog pagination never bursts.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/qweylin/studypacer/internal/metrics"
)

// Limiter paces outbound requests at a fixed minimum interval.
type Limiter struct {
	limiter *rate.Limiter
}

// Config holds limiter configuration.
type Config struct {
	// Interval is the minimum spacing between requests. Zero or negative
	// disables pacing.
	Interval time.Duration
	Burst    int
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	r := rate.Inf
	if cfg.Interval > 0 {
		r = rate.Every(cfg.Interval)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(r, burst)}
}

// Wait blocks until a token is available, respecting the context. Delays
// above a millisecond are recorded in the pacing histogram.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObservePacingDelay(waited)
	}
	return nil
}
