package depsdev

import (
	"context"
	"time"
)

// FetchHooks receives structured events from the fetch engine. Implementations
// plug logging or metrics into the client without the library depending on any
// observability framework. All methods may be called concurrently.
//
// requestID is a per-fetch correlation id; it is also sent upstream as the
// X-Request-Id header. attempt is 1-based; budget is the total attempt budget
// (MaxRetries+1).
type FetchHooks interface {
	// OnAttempt fires before each HTTP round trip.
	OnAttempt(ctx context.Context, requestID, url string, attempt, budget int)

	// OnRetry fires after a retryable failure when another attempt remains,
	// before the backoff delay is slept.
	OnRetry(ctx context.Context, requestID, url string, attempt int, delay time.Duration, cause error)

	// OnGiveUp fires when the attempt budget is exhausted or a terminal
	// failure ends the fetch.
	OnGiveUp(ctx context.Context, requestID, url string, attempts int, err error)

	// OnCacheHit fires when a fetch is served from the response cache.
	OnCacheHit(ctx context.Context, url string)

	// OnCacheMiss fires when the response cache has no usable entry.
	OnCacheMiss(ctx context.Context, url string)
}

// NoopFetchHooks is the default FetchHooks implementation.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnAttempt(context.Context, string, string, int, int) {}
func (NoopFetchHooks) OnRetry(context.Context, string, string, int, time.Duration, error) {
}
func (NoopFetchHooks) OnGiveUp(context.Context, string, string, int, error) {}
func (NoopFetchHooks) OnCacheHit(context.Context, string)                   {}
func (NoopFetchHooks) OnCacheMiss(context.Context, string)                  {}

var _ FetchHooks = NoopFetchHooks{}
