// Package depsdev is a client for the deps.dev package-metadata API.
//
// The client wraps every request in a resilient fetch routine: HTTP
// failures are classified as retryable (5xx responses, connection and
// timeout errors) or terminal (4xx responses), and retryable failures are
// reattempted with exponential backoff and jitter until the attempt budget
// is exhausted. Terminal failures surface as [*APIError].
//
// A Client is safe for concurrent use; each fetch carries its own attempt
// state and backoff sleeps never block other in-flight fetches.
package depsdev

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/eclipseo/godepsdev/pkg/cache"
)

// maxBodyBytes bounds how much of a response body is read. The largest
// upstream payloads (resolved dependency graphs) stay well under this.
const maxBodyBytes = 64 << 20

// Client talks to the deps.dev API. Construct with [New]; the zero value is
// not usable. Configuration is immutable after construction.
//
// Close releases the underlying transport. Fetches issued after Close fail
// with a terminal "session closed" [*APIError] rather than hanging.
type Client struct {
	http     *http.Client
	baseURL  string
	headers  map[string]string
	policy   RetryPolicy
	cache    cache.Cache
	cacheTTL time.Duration
	hooks    FetchHooks
	closed   atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt network timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMaxRetries sets the number of retries after the initial attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.policy.MaxRetries = n }
}

// WithBaseBackoff sets the initial retry delay.
func WithBaseBackoff(d time.Duration) Option {
	return func(c *Client) { c.policy.BaseBackoff = d }
}

// WithMaxBackoff sets the ceiling on computed retry delays.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) { c.policy.MaxBackoff = d }
}

// WithRetryPolicy replaces the whole retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithBaseURL overrides the API root. Useful for tests and proxies.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client. The client's own
// timeout becomes the per-attempt timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache enables response caching for GET requests. Cached payloads are
// keyed by the full request URL and stored for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithHooks installs an observability sink for fetch events.
func WithHooks(h FetchHooks) Option {
	return func(c *Client) {
		if h != nil {
			c.hooks = h
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.headers["User-Agent"] = ua }
}

// New creates a Client with default configuration, modified by opts.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: BaseURL,
		headers: map[string]string{
			"Content-Type": "application/json",
			"User-Agent":   "godepsdev",
		},
		policy: DefaultRetryPolicy(),
		hooks:  NoopFetchHooks{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Policy returns the client's retry policy.
func (c *Client) Policy() RetryPolicy { return c.policy }

// Close releases the transport. It is safe to call more than once; only the
// first call has an effect. In-flight fetches are not interrupted, but any
// fetch issued after Close fails immediately.
func (c *Client) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.http.CloseIdleConnections()
	}
	return nil
}

// FetchData performs a GET against url with the given query parameters,
// retrying per the client's [RetryPolicy], and returns the response body as
// raw JSON exactly as the API produced it.
//
// Failures surface as [*APIError]: 4xx responses terminate immediately with
// the status and a "Client error" message; 5xx responses and network-level
// failures are retried and, once the budget is exhausted, terminate with a
// "Server error after N retries" or "Network failure after N retries"
// message (the latter with no status). Cancelling ctx aborts the fetch with
// ctx.Err().
func (c *Client) FetchData(ctx context.Context, rawURL string, params map[string]string) (json.RawMessage, error) {
	return c.fetch(ctx, http.MethodGet, rawURL, params, nil)
}

// fetch is the engine behind both GET endpoints and POST batch endpoints.
// All upstream operations are reads, so POSTed batches retry the same way
// GETs do.
func (c *Client) fetch(ctx context.Context, method, rawURL string, params map[string]string, body []byte) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, &APIError{Message: "session closed"}
	}

	u, err := buildURL(rawURL, params)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("invalid request URL: %v", err)}
	}

	useCache := c.cache != nil && method == http.MethodGet
	cacheKey := ""
	if useCache {
		cacheKey = cache.Key(method, u)
		if data, hit, err := c.cache.Get(ctx, cacheKey); err == nil && hit && json.Valid(data) {
			c.hooks.OnCacheHit(ctx, u)
			return json.RawMessage(data), nil
		}
		c.hooks.OnCacheMiss(ctx, u)
	}

	requestID := uuid.NewString()
	budget := c.policy.MaxRetries + 1

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		c.hooks.OnAttempt(ctx, requestID, u, attempt+1, budget)

		payload, fail := c.do(ctx, method, u, requestID, body)
		if fail == nil {
			if useCache {
				_ = c.cache.Set(ctx, cacheKey, payload, c.cacheTTL)
			}
			return payload, nil
		}

		// A cancelled caller context beats any classification.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !fail.retryable {
			apiErr := fail.terminal()
			c.hooks.OnGiveUp(ctx, requestID, u, attempt+1, apiErr)
			return nil, apiErr
		}
		if attempt == c.policy.MaxRetries {
			apiErr := fail.exhausted(c.policy.MaxRetries)
			c.hooks.OnGiveUp(ctx, requestID, u, attempt+1, apiErr)
			return nil, apiErr
		}

		delay := c.policy.delay(attempt)
		c.hooks.OnRetry(ctx, requestID, u, attempt+1, delay, fail.cause())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	// Unreachable: every loop iteration returns or continues, and the final
	// iteration always returns.
	return nil, &APIError{Message: "Exceeded retry loop unexpectedly"}
}

// attemptFailure is the classified outcome of a single failed round trip.
// A zero status means no HTTP response was obtained.
type attemptFailure struct {
	status    int
	detail    string
	retryable bool
}

// cause describes the failure for observability hooks without the final
// give-up framing.
func (f *attemptFailure) cause() error {
	if f.status != 0 {
		return fmt.Errorf("status %d: %s", f.status, f.detail)
	}
	return fmt.Errorf("%s", f.detail)
}

// terminal converts the failure into the APIError surfaced when no retry
// will happen.
func (f *attemptFailure) terminal() *APIError {
	if f.status != 0 {
		return &APIError{Status: f.status, Message: "Client error: " + f.detail}
	}
	return &APIError{Message: "Network failure: " + f.detail}
}

// exhausted converts the failure into the APIError surfaced when the
// attempt budget runs out.
func (f *attemptFailure) exhausted(maxRetries int) *APIError {
	if f.status != 0 {
		return &APIError{
			Status:  f.status,
			Message: fmt.Sprintf("Server error after %d retries: %s", maxRetries, f.detail),
		}
	}
	return &APIError{
		Message: fmt.Sprintf("Network failure after %d retries: %s", maxRetries, f.detail),
	}
}

// do performs exactly one HTTP round trip and classifies the outcome.
//
// Classification: 2xx with valid JSON is success; 5xx is retryable; any
// error from the transport (connection refused, timeout, DNS) is retryable
// with no status; every other status, and a 2xx body that is not JSON, is
// terminal.
func (c *Client) do(ctx context.Context, method, u, requestID string, body []byte) (json.RawMessage, *attemptFailure) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &attemptFailure{detail: err.Error()}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &attemptFailure{detail: err.Error(), retryable: true}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// The connection died mid-body; same family as a connection error.
		return nil, &attemptFailure{detail: fmt.Sprintf("read response body: %v", err), retryable: true}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if !json.Valid(data) {
			return nil, &attemptFailure{status: resp.StatusCode, detail: "response body is not valid JSON"}
		}
		return json.RawMessage(data), nil
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return nil, &attemptFailure{status: resp.StatusCode, detail: statusDetail(resp.StatusCode, data), retryable: true}
	default:
		return nil, &attemptFailure{status: resp.StatusCode, detail: statusDetail(resp.StatusCode, data)}
	}
}

// statusDetail derives a short human-readable description from an error
// response: the first line of the body when present, the standard status
// text otherwise.
func statusDetail(status int, body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	const maxDetail = 200
	if len(s) > maxDetail {
		s = s[:maxDetail]
	}
	if s == "" {
		return http.StatusText(status)
	}
	return s
}

// buildURL validates rawURL and appends params as a query string. Parameter
// order in the encoded string is deterministic (sorted by key); the API
// does not care about ordering.
func buildURL(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL must be absolute: %q", rawURL)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, params[k])
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
