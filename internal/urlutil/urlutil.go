package urlutil

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidSeed is returned when a seed URL is not a well-formed absolute
// HTTP(S) URL. It is surfaced synchronously before any crawl begins.
var ErrInvalidSeed = errors.New("invalid seed URL: must be an absolute http or https URL")

// ValidateSeed parses and canonicalizes a seed URL.
// It returns ErrInvalidSeed (wrapped with the offending value via the
// returned error's message) for relative URLs, missing hosts, and
// non-HTTP(S) schemes.
func ValidateSeed(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidSeed
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidSeed
	}
	if u.Host == "" {
		return nil, ErrInvalidSeed
	}

	canonicalize(u)
	return u, nil
}

// Normalizer resolves and filters discovered hrefs relative to a seed.
// A single Normalizer is bound to one crawl's seed host for its lifetime.
type Normalizer struct {
	// seedHost is the lowercased host (including any port) of the seed URL.
	// Only URLs on exactly this host pass the filter.
	seedHost string
}

// NewNormalizer creates a Normalizer for the given validated seed URL.
func NewNormalizer(seed *url.URL) *Normalizer {
	return &Normalizer{seedHost: strings.ToLower(seed.Host)}
}

// Normalize resolves href against base and returns the canonical absolute
// URL plus true when the result belongs to the crawl. The second return is
// false for unparseable hrefs, non-HTTP(S) schemes, fragment-only links,
// and hosts other than the seed host. Rejection is not an error; it simply
// means the link is outside the crawl's scope.
func (n *Normalizer) Normalize(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)

	// Scheme check happens after resolution so protocol-relative links
	// ("//example.com/x") inherit the base scheme before being judged.
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	canonicalize(resolved)

	if !strings.EqualFold(resolved.Host, n.seedHost) {
		return "", false
	}

	return resolved.String(), true
}

// SeedHost returns the host the Normalizer restricts crawling to.
func (n *Normalizer) SeedHost() string {
	return n.seedHost
}

// canonicalize rewrites u in place to the canonical form used for
// deduplication.
//
// Design decision: We normalize URLs because:
//  1. The same page can have different URL representations
//  2. A fragment (#anchor) does not change the fetched content
//  3. "http://example.com" and "http://example.com/" are the same resource
func canonicalize(u *url.URL) {
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
}
