package learner

import (
	"crypto/rand"
	"math/big"
	"time"
)

const maxBackoffShift = 6

// Backoff returns the wait before retry attempt (zero-based): 2^attempt
// seconds plus up to one second of jitter. The exponent is capped so the
// delay stays bounded for pathological attempt counts.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return time.Duration(1<<uint(attempt))*time.Second + RandomJitter(time.Second)
}

// RandomJitter returns a uniformly random duration in [0, limit).
func RandomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// RandomBetween returns a uniformly random duration in [min, max).
func RandomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + RandomJitter(max-min)
}
