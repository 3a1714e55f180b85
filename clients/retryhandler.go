package clients

import (
	"math"
	"math/rand"
	"time"
)

// RetryInfo represents the retry configuration for a client.
type RetryInfo struct {
	MaxRetries  int  // Maximum number of retries allowed.
	Wait        int  // Base wait time in milliseconds between retries.
	Exponential bool // When true, Wait is multiplied by Multiplier^retryCount.
	Multiplier  int  // Exponential base; defaults to 2 when <= 0.
	MaxWait     int  // Caps the computed wait, in milliseconds. Only applies when Exponential.
	Jitter      bool // When true, adds a random [0, backoff) delay on top of the computed backoff.
}

// WaitTime returns how long to wait before the given retry attempt
// (0-indexed).
func (r *RetryInfo) WaitTime(retryCount int) time.Duration {
	if !r.Exponential {
		return time.Duration(r.Wait) * time.Millisecond
	}

	multiplier := r.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	backoff := float64(r.Wait) * math.Pow(float64(multiplier), float64(retryCount))
	if r.MaxWait > 0 && backoff > float64(r.MaxWait) {
		backoff = float64(r.MaxWait)
	}

	wait := time.Duration(backoff) * time.Millisecond
	if r.Jitter && wait > 0 {
		wait += time.Duration(rand.Int63n(int64(wait)))
	}
	return wait
}
