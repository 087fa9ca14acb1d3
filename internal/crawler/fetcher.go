package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NetworkError wraps a transport-level fetch failure: timeout, connection
// refusal, DNS failure. It is recoverable; the engine records an
// empty-field page and moves on.
type NetworkError struct {
	// URL is the URL whose fetch failed.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error for errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FetchResult is the outcome of one successful HTTP exchange.
// "Successful" means a response arrived; the status code may still be
// non-2xx, which the engine treats as a page-level failure, not an error.
type FetchResult struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Body is the response body, truncated at the configured limit.
	Body []byte

	// ContentType is the raw Content-Type header value, possibly empty.
	ContentType string
}

// IsSuccess reports whether the response status is 2xx.
func (r *FetchResult) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsHTML reports whether the body is worth parsing as HTML.
// The Content-Type header is trusted when present; otherwise the body
// bytes are sniffed. Binary payloads (images, PDFs) fail both checks and
// skip extraction.
func (r *FetchResult) IsHTML() bool {
	ct := strings.ToLower(r.ContentType)
	if ct != "" {
		return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
	}
	return strings.Contains(http.DetectContentType(r.Body), "text/html")
}

// Fetcher performs single HTTP GET requests.
// It does not retry; retries, if any, are the engine's concern.
type Fetcher struct {
	// client is the HTTP client, which carries the request timeout.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers (per-site config).
	headers map[string]string

	// maxBodySize caps how much of the response body is read.
	maxBodySize int64
}

// NewFetcher creates a Fetcher around the given client.
//
// Design decision: We require an external client because:
//  1. Timeout policy belongs to the caller
//  2. Tests can inject httptest-backed clients
func NewFetcher(client *http.Client, userAgent string, headers map[string]string, maxBodySize int64) *Fetcher {
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		headers:     headers,
		maxBodySize: maxBodySize,
	}
}

// Fetch performs one GET of pageURL.
// A response of any status yields a *FetchResult; transport failures yield
// a *NetworkError. The body is read through io.LimitReader so a huge or
// endless response cannot exhaust memory.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}

	return &FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
