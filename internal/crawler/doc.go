// Package crawler implements the traversal engine: breadth-first crawling
// of a single host with per-page metadata extraction.
//
// The package is organized around a few cooperating pieces:
//   - Engine: configuration plus the Start entry point
//   - Crawl: the handle for one running traversal (Stop/Wait)
//   - frontier: the guarded pending-queue-plus-visited-set unit
//   - Fetcher: one HTTP GET per URL with typed failures
//   - ParsePage: fault-tolerant HTML extraction (title, first h1, hrefs)
//   - Batch: bounded concurrent crawling of several independent seeds
//
// Each crawl runs its whole loop on one dedicated goroutine; progress and
// the single terminal event are delivered asynchronously on a separate
// dispatch goroutine, so an event handler may safely call Stop on its own
// crawl. Per-page failures (timeouts, non-2xx responses, broken HTML)
// produce empty-field records and never abort a crawl.
package crawler
