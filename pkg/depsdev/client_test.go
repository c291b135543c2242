package depsdev

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingHooks counts fetch events for assertions.
type recordingHooks struct {
	mu          sync.Mutex
	attempts    int
	retries     int
	giveUps     int
	cacheHits   int
	cacheMisses int
}

func (h *recordingHooks) OnAttempt(_ context.Context, _, _ string, _, _ int) {
	h.mu.Lock()
	h.attempts++
	h.mu.Unlock()
}

func (h *recordingHooks) OnRetry(_ context.Context, _, _ string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	h.retries++
	h.mu.Unlock()
}

func (h *recordingHooks) OnGiveUp(_ context.Context, _, _ string, _ int, _ error) {
	h.mu.Lock()
	h.giveUps++
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheHit(_ context.Context, _ string) {
	h.mu.Lock()
	h.cacheHits++
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, _ string) {
	h.mu.Lock()
	h.cacheMisses++
	h.mu.Unlock()
}

// noBackoff is a policy that retries without real waiting.
func noBackoff(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries}
}

func TestFetchData_Success(t *testing.T) {
	payload := `{"name":"react","versions":[{"versionKey":{"version":"18.2.0"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header")
		}
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	c := New(WithBaseURL(srv.URL))
	defer c.Close()

	got, err := c.FetchData(context.Background(), srv.URL+"/test", nil)
	if err != nil {
		t.Fatalf("FetchData: %v", err)
	}
	if string(got) != payload {
		t.Errorf("payload changed in transit:\n got %s\nwant %s", got, payload)
	}
}

func TestFetchData_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New()
	defer c.Close()

	_, err := c.FetchData(context.Background(), srv.URL+"/query", map[string]string{
		"hash.type":  "SHA256",
		"hash.value": "abc+def",
	})
	if err != nil {
		t.Fatalf("FetchData: %v", err)
	}
	if !strings.Contains(gotQuery, "hash.type=SHA256") {
		t.Errorf("missing hash.type in query %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "hash.value=abc%2Bdef") {
		t.Errorf("hash.value not encoded in query %q", gotQuery)
	}
}

func TestFetchData_RetriesThenSucceeds(t *testing.T) {
	statuses := []int{http.StatusInternalServerError, http.StatusBadGateway}
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n < len(statuses) {
			w.WriteHeader(statuses[n])
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(srv.Close)

	c := New(WithRetryPolicy(noBackoff(2)))
	defer c.Close()

	got, err := c.FetchData(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("FetchData: %v", err)
	}
	if string(got) != `{"ok": true}` {
		t.Errorf("unexpected payload %s", got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestFetchData_ServerErrorExhaustsBudget(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "upstream exploded", http.StatusServiceUnavailable)
		}))

		c := New(WithRetryPolicy(noBackoff(maxRetries)))
		_, err := c.FetchData(context.Background(), srv.URL, nil)
		srv.Close()
		c.Close()

		apiErr := AsAPIError(err)
		if apiErr == nil {
			t.Fatalf("maxRetries=%d: expected APIError, got %v", maxRetries, err)
		}
		if apiErr.Status != http.StatusServiceUnavailable {
			t.Errorf("maxRetries=%d: status = %d, want 503", maxRetries, apiErr.Status)
		}
		if !strings.Contains(apiErr.Message, "Server error") {
			t.Errorf("maxRetries=%d: message %q missing %q", maxRetries, apiErr.Message, "Server error")
		}
		if strings.Contains(apiErr.Message, "Exceeded retry loop") {
			t.Errorf("maxRetries=%d: loop fell through to the unreachable branch", maxRetries)
		}
		if n := int(calls.Load()); n != maxRetries+1 {
			t.Errorf("maxRetries=%d: %d attempts, want %d", maxRetries, n, maxRetries+1)
		}
	}
}

func TestFetchData_ClientErrorFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	// A large backoff would stall the test if the engine slept before a
	// terminal failure.
	c := New(WithRetryPolicy(RetryPolicy{
		MaxRetries:  5,
		BaseBackoff: time.Hour,
		MaxBackoff:  time.Hour,
	}))
	defer c.Close()

	start := time.Now()
	_, err := c.FetchData(context.Background(), srv.URL+"/systems/NPM/packages/nope", nil)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("terminal 4xx slept for %s", elapsed)
	}

	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
	if !apiErr.IsNotFound() {
		t.Error("IsNotFound() = false for 404")
	}
	if !strings.Contains(apiErr.Message, "Client error") {
		t.Errorf("message %q missing %q", apiErr.Message, "Client error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", n)
	}
}

func TestFetchData_NetworkFailure(t *testing.T) {
	// A server that is immediately closed yields connection-refused for
	// every attempt.
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	hooks := &recordingHooks{}
	c := New(WithRetryPolicy(noBackoff(2)), WithHooks(hooks))
	defer c.Close()

	_, err := c.FetchData(context.Background(), target, nil)

	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.HasStatus() {
		t.Errorf("network failure should carry no status, got %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Message, "Network failure") {
		t.Errorf("message %q missing %q", apiErr.Message, "Network failure")
	}
	if hooks.attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", hooks.attempts)
	}
	if hooks.retries != 2 {
		t.Errorf("expected 2 retry events, got %d", hooks.retries)
	}
	if hooks.giveUps != 1 {
		t.Errorf("expected 1 give-up event, got %d", hooks.giveUps)
	}
}

func TestFetchData_InvalidJSONIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	c := New(WithRetryPolicy(noBackoff(3)))
	defer c.Close()

	_, err := c.FetchData(context.Background(), srv.URL, nil)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", apiErr.Status)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("invalid JSON should not be retried, got %d attempts", n)
	}
}

func TestFetchData_AfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closing twice must be harmless.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	_, err := c.FetchData(context.Background(), srv.URL, nil)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError after close, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "session closed") {
		t.Errorf("message %q missing %q", apiErr.Message, "session closed")
	}
}

func TestFetchData_ContextCancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := New(WithRetryPolicy(RetryPolicy{
		MaxRetries:  3,
		BaseBackoff: time.Hour,
		MaxBackoff:  time.Hour,
	}))
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.FetchData(ctx, srv.URL, nil)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not abort after context cancellation")
	}
}

func TestFetchData_ConcurrentFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"path": "` + r.URL.Path + `"}`))
	}))
	t.Cleanup(srv.Close)

	c := New()
	defer c.Close()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := c.FetchData(context.Background(), srv.URL, nil)
			if err == nil && !json.Valid(raw) {
				err = errors.New("invalid payload")
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("fetch %d: %v", i, err)
		}
	}
}

// One fetch stuck in a long backoff must not delay an unrelated concurrent
// fetch on the same client.
func TestFetchData_BackoffDoesNotBlockOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New(WithRetryPolicy(RetryPolicy{
		MaxRetries:  1,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  2 * time.Second,
	}))
	defer c.Close()

	slowStarted := make(chan struct{})
	go func() {
		close(slowStarted)
		_, _ = c.FetchData(context.Background(), srv.URL+"/slow", nil)
	}()
	<-slowStarted

	start := time.Now()
	if _, err := c.FetchData(context.Background(), srv.URL+"/fast", nil); err != nil {
		t.Fatalf("fast fetch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fast fetch blocked for %s behind a backing-off fetch", elapsed)
	}
}

// memCache is a minimal in-memory cache.Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	return data, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestFetchData_CacheHitBypassesTransport(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"fresh": true}`))
	}))
	t.Cleanup(srv.Close)

	hooks := &recordingHooks{}
	c := New(WithCache(newMemCache(), time.Hour), WithHooks(hooks))
	defer c.Close()

	first, err := c.FetchData(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := c.FetchData(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("cached payload differs: %s vs %s", first, second)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
	if hooks.cacheMisses != 1 || hooks.cacheHits != 1 {
		t.Errorf("expected 1 miss + 1 hit, got %d misses, %d hits", hooks.cacheMisses, hooks.cacheHits)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		params  map[string]string
		want    string
		wantErr bool
	}{
		{
			name:   "no params",
			rawURL: "https://api.example.com/v3alpha/query",
			want:   "https://api.example.com/v3alpha/query",
		},
		{
			name:   "params sorted and encoded",
			rawURL: "https://api.example.com/query",
			params: map[string]string{"b": "2", "a": "1 2"},
			want:   "https://api.example.com/query?a=1+2&b=2",
		},
		{
			name:    "relative url rejected",
			rawURL:  "/query",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildURL(tt.rawURL, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
