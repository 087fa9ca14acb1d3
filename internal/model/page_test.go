package model

import (
	"testing"
	"time"
)

// TestPageRecordHasContent tests content detection on records.
func TestPageRecordHasContent(t *testing.T) {
	t.Parallel()

	t.Run("record with title has content", func(t *testing.T) {
		t.Parallel()

		record := &PageRecord{URL: "http://example.com/", Title: "Home"}
		if !record.HasContent() {
			t.Error("expected record with title to have content")
		}
	})

	t.Run("record with heading only has content", func(t *testing.T) {
		t.Parallel()

		record := &PageRecord{URL: "http://example.com/", Heading: "Welcome"}
		if !record.HasContent() {
			t.Error("expected record with heading to have content")
		}
	})

	t.Run("empty-field record has no content", func(t *testing.T) {
		t.Parallel()

		record := &PageRecord{URL: "http://example.com/broken", StatusCode: 0}
		if record.HasContent() {
			t.Error("expected failed-fetch record to have no content")
		}
	})
}

// TestCrawlResult tests derived values on crawl results.
func TestCrawlResult(t *testing.T) {
	t.Parallel()

	t.Run("pages visited counts every record", func(t *testing.T) {
		t.Parallel()

		result := &CrawlResult{
			Records: []*PageRecord{
				{URL: "http://example.com/"},
				{URL: "http://example.com/a"},
			},
		}

		if got := result.PagesVisited(); got != 2 {
			t.Errorf("expected 2 pages visited, got %d", got)
		}
	})

	t.Run("duration spans start to finish", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		result := &CrawlResult{
			StartedAt:  start,
			FinishedAt: start.Add(3 * time.Second),
		}

		if got := result.Duration(); got != 3*time.Second {
			t.Errorf("expected 3s duration, got %v", got)
		}
	})
}
