// Package urlutil implements URL normalization and the same-host crawl
// policy.
//
// All URLs that enter the frontier or the visited set pass through this
// package first, so the canonical form defined here is what deduplication
// operates on: lowercase scheme and host, no fragment, an empty path
// rewritten to "/", and the query string preserved verbatim.
//
// Domain membership is exact-host equality with the seed (case-insensitive,
// port included). Subdomains are deliberately excluded; "blog.example.com"
// is a different site than "example.com" for the purposes of a crawl.
package urlutil
