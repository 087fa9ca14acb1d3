package crawler

import "sync"

// frontier is the pending URL queue and the visited set, guarded as one
// unit. Treating them as a single structure makes Add an atomic
// check-and-set: a URL that was ever enqueued can never be enqueued again,
// even when link discovery for several pages races.
//
// The queue is FIFO, which gives the crawl its breadth-first order.
type frontier struct {
	mu      sync.Mutex
	queue   []string
	visited map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{
		visited: make(map[string]struct{}),
	}
}

// Add enqueues url unless it has ever been enqueued before.
// It reports whether the URL was accepted. The check and the insert happen
// under one lock acquisition; there is no window for a duplicate.
func (f *frontier) Add(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[url]; ok {
		return false
	}
	f.visited[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Next pops the oldest pending URL. The second return is false when the
// frontier is empty.
func (f *frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of pending URLs.
func (f *frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether url ever entered the frontier.
func (f *frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[url]
	return ok
}
