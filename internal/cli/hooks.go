package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eclipseo/godepsdev/pkg/depsdev"
)

// logHooks forwards fetch engine events to the CLI logger. Attempt and
// cache traffic goes to debug, retries and give-ups to warn so they stay
// visible without --verbose.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnAttempt(_ context.Context, requestID, url string, attempt, budget int) {
	h.logger.Debug("fetch attempt", "id", requestID, "url", url, "attempt", attempt, "budget", budget)
}

func (h *logHooks) OnRetry(_ context.Context, requestID, url string, attempt int, delay time.Duration, cause error) {
	h.logger.Warn("retrying", "id", requestID, "url", url, "attempt", attempt,
		"delay", delay.Round(time.Millisecond), "cause", cause)
}

func (h *logHooks) OnGiveUp(_ context.Context, requestID, url string, attempts int, err error) {
	h.logger.Warn("giving up", "id", requestID, "url", url, "attempts", attempts, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, url string) {
	h.logger.Debug("cache hit", "url", url)
}

func (h *logHooks) OnCacheMiss(_ context.Context, url string) {
	h.logger.Debug("cache miss", "url", url)
}

var _ depsdev.FetchHooks = (*logHooks)(nil)
