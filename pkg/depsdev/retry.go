package depsdev

import (
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy governs how the fetch engine spaces repeated attempts.
// It is immutable for the lifetime of a [Client]; every fetch call carries
// its own attempt counter, so one policy safely serves concurrent fetches.
//
// The total attempt budget is MaxRetries+1: one initial attempt plus up to
// MaxRetries retries.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts after the first.
	// Zero means fail on the first retryable outcome.
	MaxRetries int

	// BaseBackoff is the unjittered delay before the first retry.
	// The delay doubles with each subsequent retry.
	BaseBackoff time.Duration

	// MaxBackoff clamps the computed delay, jitter included.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// delay computes the backoff before retry number attempt (zero-indexed):
//
//	min(base*2^attempt + uniform(0, 0.1*base*2^attempt), max)
//
// Jitter scales with the exponent so that later attempts spread further
// apart, which avoids synchronized retry storms across concurrent clients.
// Zero-valued policies yield a zero delay, never a negative one.
func (p RetryPolicy) delay(attempt int) time.Duration {
	unjittered := float64(p.BaseBackoff) * math.Pow(2, float64(attempt))
	jitter := rand.Float64() * 0.1 * unjittered
	d := time.Duration(unjittered + jitter)
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	if d < 0 {
		d = 0
	}
	return d
}
