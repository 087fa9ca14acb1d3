package model

// PageRecord holds the metadata extracted from a single fetched page.
// A record is created once per attempted page and never mutated afterwards;
// the crawl engine appends records in visit order.
//
// Design decision: We record pages that failed to fetch or were not HTML
// with empty Title/Heading rather than dropping them. The exported data then
// accounts for every attempted URL, which makes crawl coverage auditable.
type PageRecord struct {
	// URL is the normalized URL of the page as it was fetched.
	URL string `json:"url"`

	// Title is the text of the first <title> element, trimmed.
	// Empty if the page had no title, failed to fetch, or was not HTML.
	Title string `json:"title,omitempty"`

	// Heading is the text of the first <h1> element in document order.
	// Empty under the same conditions as Title.
	Heading string `json:"heading,omitempty"`

	// StatusCode is the HTTP response status code, or 0 when the request
	// never produced a response (timeout, DNS failure, refused connection).
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type reported by the server, if any.
	ContentType string `json:"content_type,omitempty"`
}

// HasContent reports whether any metadata was extracted from the page.
func (p *PageRecord) HasContent() bool {
	return p.Title != "" || p.Heading != ""
}
