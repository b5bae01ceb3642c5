package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fhaberland/wgstats/config"
	"github.com/fhaberland/wgstats/internal/logger"
)

const (
	// proxyRemoveAfter drops a proxy from the pool after this many consecutive failures.
	proxyRemoveAfter = 2
	// softExcludeAfter keeps a proxy in the pool but deprioritizes it after this many failures.
	softExcludeAfter = 1
	// maxJitter is the upper bound of the random sleep between failed attempts.
	maxJitter = 150 * time.Millisecond
)

// userAgents is rotated randomly per attempt so consecutive requests do not
// share a browser fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
}

// retryableStatus lists responses that indicate a blocked or broken proxy
// rather than a real answer from the site. Redirects are included: the site
// answers list-page requests with 200 and redirects bots elsewhere.
var retryableStatus = map[int]struct{}{
	http.StatusMovedPermanently:    {},
	http.StatusFound:               {},
	http.StatusUnauthorized:        {},
	http.StatusForbidden:           {},
	http.StatusProxyAuthRequired:   {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// PoolStats is a snapshot of the proxy pool state, used in error messages
// and exposed for diagnostics.
type PoolStats struct {
	TotalProxies   int            `json:"total_proxies"`
	HealthyProxies int            `json:"healthy_proxies"`
	FailureCounts  map[string]int `json:"failure_counts"`
}

// Client fetches pages through a rotating proxy pool.
//
// The pool is loaded from a newline-delimited host:port file. Each attempt
// picks the next proxy from a shuffled snapshot that prefers proxies without
// recent failures. A proxy is removed after proxyRemoveAfter consecutive
// failures and rehabilitated on any success. With an empty pool the client
// falls back to direct requests, which keeps tests and proxyless setups
// working.
//
// Redirects are never followed and a German Accept-Language header is always
// sent, both of which the site uses to tell browsers from bots.
type Client struct {
	cfg config.ScraperConfig
	log zerolog.Logger

	mu         sync.Mutex
	proxies    []string
	failures   map[string]int
	transports map[string]*http.Transport

	direct *http.Transport
}

// NewClient builds a Client from scraper configuration. The proxy file is
// read lazily on first use and re-read whenever the pool runs empty.
func NewClient(cfg config.ScraperConfig) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		cfg:        cfg,
		log:        logger.With("scrape_client"),
		failures:   make(map[string]int),
		transports: make(map[string]*http.Transport),
		direct: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   cfg.ConnectTimeout,
			ResponseHeaderTimeout: cfg.ReadTimeout,
			MaxIdleConnsPerHost:   32,
		},
	}
}

// Get fetches the URL, rotating proxies until a non-retryable response
// arrives or the attempt budget is exhausted.
//
// Returns the response body, the HTTP status code, and an error when no
// usable response could be obtained at all.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, int, error) {
	c.ensureProxies()
	local := c.snapshot()
	rand.Shuffle(len(local), func(i, j int) { local[i], local[j] = local[j], local[i] })

	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt, i := 0, 0
	for attempt < maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		// Refresh the rotation once the local snapshot is exhausted.
		if len(local) > 0 && i >= len(local) {
			c.ensureProxies()
			local = c.snapshot()
			if len(local) == 0 {
				return nil, 0, fmt.Errorf("no proxies available after %d attempts", attempt)
			}
			rand.Shuffle(len(local), func(i, j int) { local[i], local[j] = local[j], local[i] })
			i = 0
		}

		proxy := "" // direct
		if len(local) > 0 {
			proxy = local[i]
			i++
		}
		attempt++

		body, status, err := c.do(ctx, rawURL, proxy)
		if err != nil {
			c.handleFailure(proxy)
			c.jitterSleep(ctx)
			continue
		}
		if _, retry := retryableStatus[status]; retry {
			c.handleFailure(proxy)
			c.jitterSleep(ctx)
			continue
		}

		c.handleSuccess(proxy)
		return body, status, nil
	}

	stats := c.Stats()
	return nil, 0, fmt.Errorf("request failed after %d attempts (healthy proxies: %d/%d)",
		maxAttempts, stats.HealthyProxies, stats.TotalProxies)
}

// do performs a single attempt through the given proxy ("" means direct).
func (c *Client) do(ctx context.Context, rawURL, proxy string) ([]byte, int, error) {
	transport, err := c.transportFor(proxy)
	if err != nil {
		return nil, 0, err
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   c.cfg.ConnectTimeout + c.cfg.ReadTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// transportFor returns a cached transport routed through the proxy, or the
// direct transport for the empty string.
func (c *Client) transportFor(proxy string) (*http.Transport, error) {
	if proxy == "" {
		return c.direct, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.transports[proxy]; ok {
		return t, nil
	}

	u, err := url.Parse("http://" + proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
	}
	dialer := &net.Dialer{Timeout: c.cfg.ConnectTimeout}
	t := &http.Transport{
		Proxy:                 http.ProxyURL(u),
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   c.cfg.ConnectTimeout,
		ResponseHeaderTimeout: c.cfg.ReadTimeout,
		MaxIdleConnsPerHost:   8,
	}
	c.transports[proxy] = t
	return t, nil
}

// ensureProxies loads the proxy file if the pool is empty.
func (c *Client) ensureProxies() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.proxies) > 0 {
		return
	}
	loaded := loadProxies(c.cfg.ProxyFile)
	if len(loaded) > 0 {
		c.proxies = loaded
		c.log.Debug().Int("count", len(loaded)).Msg("proxy pool loaded")
	}
}

// snapshot returns proxies without recent failures, or the whole pool when
// every proxy is soft-excluded.
func (c *Client) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	healthy := make([]string, 0, len(c.proxies))
	for _, p := range c.proxies {
		if c.failures[p] < softExcludeAfter {
			healthy = append(healthy, p)
		}
	}
	if len(healthy) > 0 {
		return healthy
	}
	out := make([]string, len(c.proxies))
	copy(out, c.proxies)
	return out
}

func (c *Client) handleFailure(proxy string) {
	if proxy == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[proxy]++
	if c.failures[proxy] >= proxyRemoveAfter {
		for idx, p := range c.proxies {
			if p == proxy {
				c.proxies = append(c.proxies[:idx], c.proxies[idx+1:]...)
				break
			}
		}
		delete(c.failures, proxy)
		c.log.Debug().Str("proxy", proxy).Msg("proxy removed from pool")
	}
}

func (c *Client) handleSuccess(proxy string) {
	if proxy == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[proxy] = 0
}

// Stats returns a snapshot of the pool state.
func (c *Client) Stats() PoolStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := PoolStats{
		TotalProxies:  len(c.proxies),
		FailureCounts: make(map[string]int, len(c.failures)),
	}
	for _, p := range c.proxies {
		if c.failures[p] < proxyRemoveAfter {
			stats.HealthyProxies++
		}
	}
	for p, n := range c.failures {
		stats.FailureCounts[p] = n
	}
	return stats
}

// jitterSleep pauses briefly between failed attempts, honoring cancellation.
func (c *Client) jitterSleep(ctx context.Context) {
	d := time.Duration(rand.Int63n(int64(maxJitter)))
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// loadProxies reads a newline-delimited host:port list. Blank lines and
// entries without a port separator are skipped; a missing file yields nil.
func loadProxies(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, ln := range strings.Split(string(data), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" && strings.Contains(ln, ":") {
			out = append(out, ln)
		}
	}
	return out
}
