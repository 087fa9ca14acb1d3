package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/urlgrabby/urlgrabby/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePages(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", result.SeedURL},
			{"Status", string(result.Status)},
			{"Pages Visited", strconv.Itoa(result.PagesVisited())},
			{"Duration", result.Duration().String()},
		},
	})
	md.PlainText("")
}

// writePages writes the per-page table in visit order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.Records) == 0 {
		md.PlainText("No pages visited.")
		return
	}

	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		rows = append(rows, []string{rec.URL, rec.Title, rec.Heading})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Page Title", "Main Heading"},
		Rows:   rows,
	})
}
