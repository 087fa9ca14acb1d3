package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urlgrabby/urlgrabby/internal/model"
	"github.com/urlgrabby/urlgrabby/internal/urlutil"
)

// Engine defaults, applied by New and overridable via options.
const (
	defaultDelay       = 1 * time.Second
	defaultMaxPages    = 1000
	defaultUserAgent   = "urlgrabby/1.0 (+https://github.com/urlgrabby/urlgrabby)"
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// eventBufferSize bounds the queue between the crawl worker and the
	// event dispatcher. Progress events are small and consumed quickly;
	// the buffer only smooths bursts, it is not a storage mechanism.
	eventBufferSize = 64
)

// Engine holds the configuration for crawls and starts them.
// An Engine is reusable: each Start call creates fresh traversal state, so
// one Engine can run many independent crawls, sequentially or concurrently.
type Engine struct {
	// client is the HTTP client used for all fetches. Its Timeout bounds
	// each request.
	client *http.Client

	// delay is the pause between the completion of one page and the next
	// fetch. This is a fixed gap, not a rolling-window rate, which makes
	// the politeness guarantee easy to reason about.
	delay time.Duration

	// maxPages caps attempted pages per crawl.
	maxPages int

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers applied to every fetch.
	headers map[string]string

	// maxBodySize caps the response bytes read per page.
	maxBodySize int64

	// ignorePatterns are URL path globs excluded from crawling.
	ignorePatterns []string

	// logger receives per-page debug output.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay sets the pause between requests. Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithMaxPages caps the number of attempted pages per crawl.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// WithHeaders sets extra request headers applied to every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(e *Engine) {
		e.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithIgnorePatterns sets URL path globs to skip during crawling
// (e.g. "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) Option {
	return func(e *Engine) {
		e.ignorePatterns = patterns
	}
}

// WithLogger sets the logger for per-page progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine.
//
// Design decision: We require an external client rather than building one
// because the caller owns timeout policy, and tests inject clients backed
// by httptest servers. A nil client falls back to a 10 second timeout.
func New(client *http.Client, opts ...Option) *Engine {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	e := &Engine{
		client:      client,
		delay:       defaultDelay,
		maxPages:    defaultMaxPages,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Crawl is the handle for one running traversal.
type Crawl struct {
	// seedURL is the normalized seed, available before any event fires.
	seedURL string

	cancel   context.CancelFunc
	stopOnce sync.Once

	// events carries Event values from the worker to the dispatcher.
	events chan Event

	// done is closed after the terminal event has been handled.
	done chan struct{}

	// result is written by the worker before the terminal event is sent
	// and read by Wait after done closes; the channel close orders the
	// two, so no lock is needed.
	result *model.CrawlResult
}

// SeedURL returns the crawl's normalized seed URL.
func (c *Crawl) SeedURL() string {
	return c.seedURL
}

// Stop requests cancellation and returns immediately.
// The crawl halts before the next fetch begins: an in-flight fetch or an
// inter-request delay is interrupted rather than run to completion. Stop is
// idempotent and safe to call from an event handler.
func (c *Crawl) Stop() {
	c.stopOnce.Do(c.cancel)
}

// Wait blocks until the crawl has terminated and its terminal event has
// been delivered, then returns the final result.
func (c *Crawl) Wait() *model.CrawlResult {
	<-c.done
	return c.result
}

// dispatch delivers events to the handler on its own goroutine, decoupling
// the crawl worker from handler latency and making Stop-from-handler safe.
func (c *Crawl) dispatch(onEvent EventHandler) {
	for ev := range c.events {
		if onEvent != nil {
			onEvent(ev)
		}
	}
	close(c.done)
}

// Start validates the seed and begins a crawl on a background goroutine.
// It returns urlutil.ErrInvalidSeed synchronously when seedURL is not an
// absolute HTTP(S) URL; no goroutine is started in that case.
//
// onEvent receives zero or more ProgressEvent values and then exactly one
// terminal event. A nil handler is allowed; use Wait for the result.
func (e *Engine) Start(seedURL string, onEvent EventHandler) (*Crawl, error) {
	seed, err := urlutil.ValidateSeed(seedURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Crawl{
		seedURL: seed.String(),
		cancel:  cancel,
		events:  make(chan Event, eventBufferSize),
		done:    make(chan struct{}),
	}

	go c.dispatch(onEvent)
	go e.run(ctx, seed, c)

	return c, nil
}

// run is the traversal loop. It owns all crawl state for its lifetime; the
// only outside influence is context cancellation via Stop.
func (e *Engine) run(ctx context.Context, seed *url.URL, c *Crawl) {
	result := &model.CrawlResult{
		SeedURL:   seed.String(),
		StartedAt: time.Now(),
	}

	// An unrecoverable fault inside the loop must still deliver a
	// terminal event; otherwise Wait would hang forever.
	defer func() {
		if r := recover(); r != nil {
			result.Status = model.StatusFailed
			result.Err = fmt.Errorf("internal fault: %v", r)
			result.FinishedAt = time.Now()
			c.result = result
			c.events <- FailedEvent{Err: result.Err, Result: result}
		}
		close(c.events)
	}()

	normalizer := urlutil.NewNormalizer(seed)
	fetcher := NewFetcher(e.client, e.userAgent, e.headers, e.maxBodySize)
	fr := newFrontier()
	fr.Add(seed.String())

	e.logger.Info("crawl started",
		"seed", seed.String(),
		"host", normalizer.SeedHost(),
		"delay", e.delay.String(),
	)

	cancelled := false

	for !cancelled {
		// Observe cancellation at least once per iteration even when the
		// delay is zero and fetches return instantly.
		select {
		case <-ctx.Done():
			cancelled = true
			continue
		default:
		}

		if result.PagesVisited() >= e.maxPages {
			e.logger.Warn("page cap reached", "max_pages", e.maxPages)
			break
		}

		pageURL, ok := fr.Next()
		if !ok {
			break
		}

		record := e.crawlPage(ctx, fetcher, normalizer, fr, pageURL)
		result.Records = append(result.Records, record)

		c.events <- ProgressEvent{
			PagesVisited: result.PagesVisited(),
			FrontierSize: fr.Len(),
			LastURL:      pageURL,
		}

		// Politeness delay, interruptible so Stop latency is bounded by
		// the implementation, not by the full delay duration.
		if e.delay > 0 && fr.Len() > 0 {
			select {
			case <-ctx.Done():
				cancelled = true
			case <-time.After(e.delay):
			}
		}
	}

	result.FinishedAt = time.Now()
	if cancelled {
		result.Status = model.StatusCancelled
	} else {
		result.Status = model.StatusCompleted
	}

	e.logger.Info("crawl finished",
		"status", string(result.Status),
		"pages_visited", result.PagesVisited(),
		"duration", result.Duration().String(),
	)

	c.result = result
	if cancelled {
		c.events <- CancelledEvent{Result: result}
	} else {
		c.events <- CompletedEvent{Result: result}
	}
}

// crawlPage fetches one URL, extracts its metadata, and feeds accepted
// links back into the frontier. It always returns a record; fetch and
// parse failures degrade to empty fields.
func (e *Engine) crawlPage(ctx context.Context, fetcher *Fetcher, normalizer *urlutil.Normalizer, fr *frontier, pageURL string) *model.PageRecord {
	record := &model.PageRecord{URL: pageURL}

	res, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		e.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return record
	}

	record.StatusCode = res.StatusCode
	record.ContentType = res.ContentType

	if !res.IsSuccess() {
		e.logger.Debug("non-success status", "url", pageURL, "status", res.StatusCode)
		return record
	}

	if !res.IsHTML() {
		e.logger.Debug("skipping non-HTML content", "url", pageURL, "content_type", res.ContentType)
		return record
	}

	parsed, err := ParsePage(bytes.NewReader(res.Body), res.ContentType)
	if err != nil {
		// Unparseable markup downgrades to an empty-field record.
		e.logger.Warn("parse failed", "url", pageURL, "error", err)
		return record
	}

	record.Title = parsed.Title
	record.Heading = parsed.Heading

	base, err := url.Parse(pageURL)
	if err != nil {
		return record
	}

	discovered := 0
	for _, href := range parsed.Links {
		normalized, ok := normalizer.Normalize(base, href)
		if !ok || !e.shouldCrawl(normalized) {
			continue
		}
		if fr.Add(normalized) {
			discovered++
		}
	}

	e.logger.Debug("page crawled",
		"url", pageURL,
		"title", record.Title,
		"new_links", discovered,
	)

	return record
}

// shouldCrawl checks a normalized URL's path against the ignore patterns.
func (e *Engine) shouldCrawl(pageURL string) bool {
	if len(e.ignorePatterns) == 0 {
		return true
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range e.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/logout*" matches "/logout", "/logout-confirm"
func matchPattern(pattern, path string) bool {
	// "/admin/*" should match the whole subtree, not just one segment.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Extension patterns like "*.pdf" match regardless of directory.
	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Try the bare filename for directory-less patterns.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
