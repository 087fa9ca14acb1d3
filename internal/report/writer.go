package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urlgrabby/urlgrabby/internal/config"
	"github.com/urlgrabby/urlgrabby/internal/model"
)

// ErrUnknownFormat is returned when an unsupported output format is requested.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the crawl result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// NewWriter creates a Writer for the given format name.
// Supported formats are config.FormatCSV, config.FormatJSON, and
// config.FormatMarkdown.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case config.FormatCSV:
		return NewCSVWriter(output), nil
	case config.FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Extension returns the conventional file extension for the given format,
// including the leading dot. Unknown formats fall back to ".txt".
func Extension(format string) string {
	switch format {
	case config.FormatCSV:
		return ".csv"
	case config.FormatJSON:
		return ".json"
	case config.FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// ExportFile writes the crawl result to path in the given format.
// Returns the number of bytes written.
//
// The file is written to a temporary file in the same directory and
// renamed into place, so a crash mid-write never leaves a truncated
// report at the destination.
func ExportFile(result *model.CrawlResult, path, format string) (int, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	w, err := NewWriter(format, tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}

	n, err := w.Write(result)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to move report into place: %w", err)
	}
	return n, nil
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write crawl results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the crawl result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter wraps an io.Writer and tracks the number of bytes written.
// It exists because csv.Writer and markdown builders do not report byte
// counts themselves.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
