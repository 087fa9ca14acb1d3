package crawler

import "github.com/urlgrabby/urlgrabby/internal/model"

// Event is delivered to an EventHandler while a crawl runs.
// A handler receives zero or more ProgressEvent values followed by exactly
// one terminal event: CompletedEvent, CancelledEvent, or FailedEvent.
//
// Design decision: We use a sealed interface with concrete event structs
// rather than a single struct with a kind field because:
//  1. Each event carries only the fields that make sense for it
//  2. Handlers switch on type, which the compiler checks
//  3. New event kinds cannot be constructed outside this package
type Event interface {
	event()
}

// EventHandler receives crawl events on the crawl's dispatch goroutine.
// Handlers must not block for long; a slow handler eventually backpressures
// the crawl worker. Calling Stop on the crawl that delivered the event is
// the one sanctioned reentrant call.
type EventHandler func(Event)

// ProgressEvent reports the crawl's state after a page was processed.
type ProgressEvent struct {
	// PagesVisited counts every attempted page so far, including failures.
	PagesVisited int

	// FrontierSize is the number of URLs discovered but not yet fetched.
	FrontierSize int

	// LastURL is the URL of the page just processed.
	LastURL string
}

// CompletedEvent is the terminal event for a crawl whose frontier drained
// (or whose page cap was reached).
type CompletedEvent struct {
	// Result holds the final records in visit order.
	Result *model.CrawlResult
}

// CancelledEvent is the terminal event for a crawl halted by Stop.
// Records collected before cancellation are retained.
type CancelledEvent struct {
	Result *model.CrawlResult
}

// FailedEvent is the terminal event for an unrecoverable internal fault.
// Per-page fetch or parse failures never produce this event.
type FailedEvent struct {
	// Err is the internal fault that aborted the crawl.
	Err error

	// Result holds whatever records were collected before the fault.
	Result *model.CrawlResult
}

func (ProgressEvent) event()  {}
func (CompletedEvent) event() {}
func (CancelledEvent) event() {}
func (FailedEvent) event()    {}
