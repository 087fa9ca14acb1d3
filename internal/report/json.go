package report

import (
	"encoding/json"
	"io"

	"github.com/urlgrabby/urlgrabby/internal/model"
)

// JSONWriter outputs crawl results in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonResult is the JSON document shape for a crawl result.
//
// Design decision: We wrap the result rather than marshaling
// model.CrawlResult directly because this allows us to add output-specific
// fields (seed, status, counts) without polluting the core data structure.
type jsonResult struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Status is the terminal crawl status.
	Status string `json:"status"`

	// PagesVisited is the number of pages fetched.
	PagesVisited int `json:"pages_visited"`

	// DurationSeconds is the wall-clock crawl duration.
	DurationSeconds float64 `json:"duration_seconds"`

	// Pages lists the visited pages in visit order.
	Pages []*model.PageRecord `json:"pages"`
}

// Write outputs the crawl result in JSON format.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	doc := jsonResult{
		Seed:            result.SeedURL,
		Status:          string(result.Status),
		PagesVisited:    result.PagesVisited(),
		DurationSeconds: result.Duration().Seconds(),
		Pages:           result.Records,
	}

	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
