package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fhaberland/wgstats/config"
)

func testClientConfig(maxAttempts int) config.ScraperConfig {
	return config.ScraperConfig{
		BaseURL:        "http://example.invalid",
		CityPath:       "wg-zimmer-in-Berlin.8.0.0",
		ProxyFile:      "", // direct mode
		MaxAttempts:    maxAttempts,
		ConnectTimeout: time.Second,
		ReadTimeout:    2 * time.Second,
	}
}

func TestClientGet_RetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(5))
	body, status, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected response: %d %q", status, body)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientGet_Headers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		if !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("unexpected user agent: %q", ua)
		}
		if lang := r.Header.Get("Accept-Language"); !strings.HasPrefix(lang, "de-DE") {
			t.Errorf("unexpected accept-language: %q", lang)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(1))
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientGet_DoesNotFollowRedirects(t *testing.T) {
	var followed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
		_, _ = w.Write([]byte("should never arrive here"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(testClientConfig(2))
	_, _, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error: redirects are retryable and must exhaust the budget")
	}
	if followed.Load() {
		t.Fatalf("redirect was followed")
	}
}

func TestClientGet_AttemptBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(3))
	_, _, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Fatalf("error should mention the attempt budget: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientGet_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testClientConfig(100))
	if _, _, err := c.Get(ctx, srv.URL); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestLoadProxies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxies.txt")
	content := "10.0.0.1:8080\n\nnot-a-proxy\n10.0.0.2:3128  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write proxy file: %v", err)
	}

	got := loadProxies(path)
	if len(got) != 2 || got[0] != "10.0.0.1:8080" || got[1] != "10.0.0.2:3128" {
		t.Fatalf("unexpected proxies: %v", got)
	}

	if p := loadProxies(filepath.Join(dir, "missing.txt")); p != nil {
		t.Fatalf("missing file should yield nil, got %v", p)
	}
	if p := loadProxies(""); p != nil {
		t.Fatalf("empty path should yield nil, got %v", p)
	}
}

func TestTransportTimeouts(t *testing.T) {
	cfg := testClientConfig(1)
	c := NewClient(cfg)

	// The read budget lives on the transport so a server that connects fast
	// but never answers is still cut off after ReadTimeout.
	if c.direct.ResponseHeaderTimeout != cfg.ReadTimeout {
		t.Fatalf("direct transport read budget = %v, want %v", c.direct.ResponseHeaderTimeout, cfg.ReadTimeout)
	}

	pt, err := c.transportFor("10.0.0.1:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.ResponseHeaderTimeout != cfg.ReadTimeout {
		t.Fatalf("proxy transport read budget = %v, want %v", pt.ResponseHeaderTimeout, cfg.ReadTimeout)
	}
	if pt.Proxy == nil {
		t.Fatalf("proxy transport has no proxy configured")
	}
}

func TestProxyFailureBookkeeping(t *testing.T) {
	c := NewClient(testClientConfig(1))
	c.proxies = []string{"10.0.0.1:8080", "10.0.0.2:8080"}

	// One failure soft-excludes the proxy from the healthy snapshot.
	c.handleFailure("10.0.0.1:8080")
	snap := c.snapshot()
	if len(snap) != 1 || snap[0] != "10.0.0.2:8080" {
		t.Fatalf("unexpected snapshot after soft exclusion: %v", snap)
	}

	// A second failure removes it from the pool entirely.
	c.handleFailure("10.0.0.1:8080")
	stats := c.Stats()
	if stats.TotalProxies != 1 {
		t.Fatalf("proxy not removed: %+v", stats)
	}

	// Success resets the failure count.
	c.handleFailure("10.0.0.2:8080")
	c.handleSuccess("10.0.0.2:8080")
	if got := c.Stats(); got.HealthyProxies != 1 {
		t.Fatalf("success did not rehabilitate proxy: %+v", got)
	}

	// With every proxy soft-excluded the full pool is returned.
	c.handleFailure("10.0.0.2:8080")
	if snap := c.snapshot(); len(snap) != 1 {
		t.Fatalf("exhausted pool should fall back to all proxies: %v", snap)
	}
}
