package report

import (
	"encoding/csv"
	"io"

	"github.com/urlgrabby/urlgrabby/internal/model"
)

// csvHeader is the fixed column header row for CSV output.
// Consumers key on these exact names, so they must not change.
var csvHeader = []string{"URL", "Page Title", "Main Heading"}

// CSVWriter outputs crawl results in CSV format.
// This is the primary export format: one row per visited page with the
// page URL, title, and main heading.
//
// Design decision: We use standard encoding/csv because it handles RFC 4180
// quoting (embedded commas, quotes, and newlines in titles) correctly, and
// the output is a flat table with no need for anything richer.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result as CSV.
// Rows appear in visit order. Pages that failed to load or parse are
// written with empty title and heading fields so the URL is still recorded.
func (w *CSVWriter) Write(result *model.CrawlResult) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}
	for _, rec := range result.Records {
		if err := cw.Write([]string{rec.URL, rec.Title, rec.Heading}); err != nil {
			return counter.n, err
		}
	}
	cw.Flush()
	return counter.n, cw.Error()
}
