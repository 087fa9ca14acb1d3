package model

import "time"

// CrawlStatus describes how a crawl terminated.
type CrawlStatus string

// Crawl terminal states. A crawl that is still running has no status yet;
// exactly one of these is assigned when the traversal loop exits.
const (
	// StatusCompleted means the frontier was exhausted.
	StatusCompleted CrawlStatus = "completed"

	// StatusCancelled means a stop request was observed before exhaustion.
	StatusCancelled CrawlStatus = "cancelled"

	// StatusFailed means the engine hit an unrecoverable internal fault.
	// Individual page failures never produce this status.
	StatusFailed CrawlStatus = "failed"
)

// CrawlResult is the final outcome of one crawl.
type CrawlResult struct {
	// SeedURL is the normalized starting URL.
	SeedURL string `json:"seed_url"`

	// Status records how the crawl terminated.
	Status CrawlStatus `json:"status"`

	// Records contains one entry per attempted page, in visit order.
	Records []*PageRecord `json:"records"`

	// StartedAt and FinishedAt bound the traversal loop's lifetime.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Err holds the internal fault when Status is StatusFailed.
	// Excluded from JSON because error values do not marshal usefully.
	Err error `json:"-"`
}

// PagesVisited returns the number of attempted pages, successful or not.
func (r *CrawlResult) PagesVisited() int {
	return len(r.Records)
}

// Duration returns the wall-clock time the traversal took.
func (r *CrawlResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
