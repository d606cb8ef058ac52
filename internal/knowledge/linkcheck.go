package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/draftgate/internal/cache"
	"github.com/ppiankov/draftgate/internal/util"
	"github.com/ppiankov/draftgate/internal/worker"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// LinkResult is the outcome of one source accessibility check.
type LinkResult struct {
	URL        string `json:"url"`
	Accessible bool   `json:"accessible"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// LinkChecker verifies that knowledge-source URLs are still reachable.
// Checks respect robots.txt and per-domain rate limits, and results are
// cached so repeated reviews do not re-hit sources.
type LinkChecker struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	userAgent  string
	maxWorkers int
}

// NewLinkChecker creates a link checker. The cache may be nil to disable
// result caching.
func NewLinkChecker(timeout time.Duration, userAgent string, requestsPerSecond float64, burst int, maxWorkers int, resultCache cache.Cache) *LinkChecker {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:     util.NewRobotsChecker(userAgent, timeout),
		limiter:    worker.NewLimiter(requestsPerSecond, burst),
		cache:      resultCache,
		cacheTTL:   24 * time.Hour,
		userAgent:  userAgent,
		maxWorkers: maxWorkers,
	}
}

// CheckAll checks all URLs concurrently and returns results keyed by URL.
func (c *LinkChecker) CheckAll(ctx context.Context, urls []string) map[string]LinkResult {
	results := make([]LinkResult, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = LinkResult{URL: url, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.Check(ctx, url)
		}(i, u)
	}
	wg.Wait()

	byURL := make(map[string]LinkResult, len(results))
	for _, r := range results {
		byURL[r.URL] = r
	}
	return byURL
}

// Check checks one URL, consulting the cache first.
func (c *LinkChecker) Check(ctx context.Context, url string) LinkResult {
	key := cache.Key("link", url)
	if c.cache != nil {
		if data, found := c.cache.Get(key); found {
			var cached LinkResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	result := c.checkWithRetry(ctx, url)

	if c.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(key, data, c.cacheTTL)
		}
	}
	return result
}

func (c *LinkChecker) checkWithRetry(ctx context.Context, url string) LinkResult {
	var result LinkResult
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkSingle(ctx, url)
		if !isRetryableLinkResult(result) {
			return result
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return result
}

func (c *LinkChecker) checkSingle(ctx context.Context, url string) LinkResult {
	result := LinkResult{URL: url}

	if !c.robots.IsAllowed(ctx, url) {
		// Disallowed sources are treated as inaccessible rather than probed
		result.Error = "disallowed by robots.txt"
		return result
	}

	if err := c.limiter.Wait(ctx, url); err != nil {
		result.Error = fmt.Sprintf("rate limit wait: %v", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400
	return result
}

// isRetryableLinkResult returns true for results that indicate transient failures
func isRetryableLinkResult(result LinkResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == 429 {
		return true
	}
	if result.Error != "" {
		s := strings.ToLower(result.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}

// Prune runs all source URLs of the store through the checker and marks
// the dead ones.
func Prune(ctx context.Context, store *Store, checker *LinkChecker) {
	urls := store.SourceURLs()
	if len(urls) == 0 {
		return
	}
	for url, result := range checker.CheckAll(ctx, urls) {
		if !result.Accessible {
			store.MarkDead(url)
		}
	}
}
