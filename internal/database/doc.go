// Package database provides SQLite-based storage for crawl history.
//
// Each completed crawl is saved as a session row plus one page row per
// visited URL, so past crawls can be listed and re-exported without
// re-fetching anything.
package database
