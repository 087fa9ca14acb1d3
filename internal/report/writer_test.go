package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urlgrabby/urlgrabby/internal/config"
	"github.com/urlgrabby/urlgrabby/internal/model"
)

// createTestResult creates a crawl result with sample data for testing.
func createTestResult() *model.CrawlResult {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.CrawlResult{
		SeedURL:    "https://example.com/",
		Status:     model.StatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Records: []*model.PageRecord{
			{
				URL:     "https://example.com/",
				Title:   "Example Domain",
				Heading: "Example Domain",
			},
			{
				URL:     "https://example.com/about",
				Title:   `About, "us"`,
				Heading: "Who we are\nand why",
			},
			{
				URL: "https://example.com/broken",
			},
		},
	}
}

// TestCSVWriter tests the CSV report writer.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header row", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)

		if _, err := w.Write(&model.CrawlResult{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := strings.TrimRight(buf.String(), "\n")
		if got != "URL,Page Title,Main Heading" {
			t.Errorf("header = %q, want %q", got, "URL,Page Title,Main Heading")
		}
	})

	t.Run("round-trips records with embedded commas quotes and newlines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)
		result := createTestResult()

		n, err := w.Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
		}

		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to re-read CSV: %v", err)
		}
		if len(rows) != len(result.Records)+1 {
			t.Fatalf("got %d rows, want %d", len(rows), len(result.Records)+1)
		}
		for i, rec := range result.Records {
			row := rows[i+1]
			if row[0] != rec.URL || row[1] != rec.Title || row[2] != rec.Heading {
				t.Errorf("row %d = %v, want [%s %s %s]", i+1, row, rec.URL, rec.Title, rec.Heading)
			}
		}
	})

	t.Run("failed pages keep their URL with empty fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://example.com/broken,,") {
			t.Errorf("expected empty-field row for failed page, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("produces valid JSON with crawl metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Seed            string              `json:"seed"`
			Status          string              `json:"status"`
			PagesVisited    int                 `json:"pages_visited"`
			DurationSeconds float64             `json:"duration_seconds"`
			Pages           []*model.PageRecord `json:"pages"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if doc.Seed != "https://example.com/" {
			t.Errorf("seed = %q", doc.Seed)
		}
		if doc.Status != "completed" {
			t.Errorf("status = %q", doc.Status)
		}
		if doc.PagesVisited != 3 {
			t.Errorf("pages_visited = %d, want 3", doc.PagesVisited)
		}
		if doc.DurationSeconds != 3 {
			t.Errorf("duration_seconds = %v, want 3", doc.DurationSeconds)
		}
		if len(doc.Pages) != 3 {
			t.Errorf("got %d pages, want 3", len(doc.Pages))
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"seed\"") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and page tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Crawl Report") {
			t.Error("expected report title")
		}
		if !strings.Contains(output, "https://example.com/about") {
			t.Error("expected page URL in table")
		}
		if !strings.Contains(output, "Pages Visited") {
			t.Error("expected summary row")
		}
	})

	t.Run("handles empty result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(&model.CrawlResult{Status: model.StatusCompleted}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No pages visited.") {
			t.Error("expected empty-result message")
		}
	})
}

// TestNewWriter tests the format-based writer factory.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	t.Run("known formats", func(t *testing.T) {
		t.Parallel()

		for _, format := range []string{config.FormatCSV, config.FormatJSON, config.FormatMarkdown} {
			if _, err := NewWriter(format, &bytes.Buffer{}); err != nil {
				t.Errorf("NewWriter(%q) returned error: %v", format, err)
			}
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := NewWriter("xml", &bytes.Buffer{})
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

// TestMultiWriter tests fan-out writing.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewCSVWriter(&a), NewCSVWriter(&b))

	n, err := mw.Write(createTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != b.String() {
		t.Error("expected identical output in both buffers")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("reported %d bytes, want %d", n, a.Len()+b.Len())
	}
}

// TestExportFile tests atomic file export.
func TestExportFile(t *testing.T) {
	t.Parallel()

	t.Run("writes file and reports byte count", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		result := createTestResult()

		n, err := ExportFile(result, path, config.FormatCSV)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read exported file: %v", err)
		}
		if len(data) != n {
			t.Errorf("file has %d bytes, reported %d", len(data), n)
		}
	})

	t.Run("repeated exports are byte-identical", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		result := createTestResult()

		first := filepath.Join(dir, "a.csv")
		second := filepath.Join(dir, "b.csv")
		if _, err := ExportFile(result, first, config.FormatCSV); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := ExportFile(result, second, config.FormatCSV); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		a, _ := os.ReadFile(first)
		b, _ := os.ReadFile(second)
		if !bytes.Equal(a, b) {
			t.Error("expected identical exports for identical input")
		}
	})

	t.Run("leaves no temporary file behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.json")
		if _, err := ExportFile(createTestResult(), path, config.FormatJSON); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to list directory: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "out.json" {
			t.Errorf("unexpected directory contents: %v", entries)
		}
	})

	t.Run("unknown format removes temporary file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := ExportFile(createTestResult(), filepath.Join(dir, "out.xml"), "xml")
		if !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("expected ErrUnknownFormat, got %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("expected empty directory, got %v", entries)
		}
	})
}

// TestExtension tests format to file extension mapping.
func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{config.FormatCSV, ".csv"},
		{config.FormatJSON, ".json"},
		{config.FormatMarkdown, ".md"},
		{"unknown", ".txt"},
	}
	for _, tt := range tests {
		if got := Extension(tt.format); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
