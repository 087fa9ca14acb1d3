package database

import (
	"context"
	"testing"
	"time"

	"github.com/urlgrabby/urlgrabby/internal/model"
)

// openTestDB creates a CrawlDB in a temporary directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return cdb
}

// sampleResult builds a finished crawl result for storage tests.
func sampleResult(seed string) *model.CrawlResult {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.CrawlResult{
		SeedURL:    seed,
		Status:     model.StatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(5 * time.Second),
		Records: []*model.PageRecord{
			{
				URL:         seed,
				Title:       "Home",
				Heading:     "Welcome",
				StatusCode:  200,
				ContentType: "text/html; charset=utf-8",
			},
			{
				URL:        seed + "missing",
				StatusCode: 404,
			},
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database when allowed", func(t *testing.T) {
		t.Parallel()

		openTestDB(t)
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveAndGetCrawl(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()
	want := sampleResult("https://example.com/")

	id, err := cdb.SaveCrawl(ctx, want)
	if err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive session ID, got %d", id)
	}

	got, err := cdb.GetCrawl(ctx, id)
	if err != nil {
		t.Fatalf("failed to get crawl: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored crawl, got nil")
	}
	if got.SeedURL != want.SeedURL {
		t.Errorf("seed = %q, want %q", got.SeedURL, want.SeedURL)
	}
	if got.Status != want.Status {
		t.Errorf("status = %q, want %q", got.Status, want.Status)
	}
	if !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, want.StartedAt)
	}
	if len(got.Records) != len(want.Records) {
		t.Fatalf("got %d records, want %d", len(got.Records), len(want.Records))
	}
	for i, rec := range want.Records {
		g := got.Records[i]
		if g.URL != rec.URL || g.Title != rec.Title || g.Heading != rec.Heading {
			t.Errorf("record %d = %+v, want %+v", i, g, rec)
		}
		if g.StatusCode != rec.StatusCode || g.ContentType != rec.ContentType {
			t.Errorf("record %d metadata = %+v, want %+v", i, g, rec)
		}
	}
}

func TestGetCrawlNotFound(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)

	got, err := cdb.GetCrawl(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown session, got %+v", got)
	}
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	first := sampleResult("https://a.example.com/")
	second := sampleResult("https://b.example.com/")
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.FinishedAt = second.StartedAt.Add(time.Second)

	if _, err := cdb.SaveCrawl(ctx, first); err != nil {
		t.Fatalf("failed to save first crawl: %v", err)
	}
	if _, err := cdb.SaveCrawl(ctx, second); err != nil {
		t.Fatalf("failed to save second crawl: %v", err)
	}

	sessions, err := cdb.ListSessions(ctx)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	// Most recent first
	if sessions[0].SeedURL != "https://b.example.com/" {
		t.Errorf("first session seed = %q, want most recent", sessions[0].SeedURL)
	}
	if sessions[0].PagesVisited != 2 {
		t.Errorf("pages_visited = %d, want 2", sessions[0].PagesVisited)
	}
	if sessions[1].Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", sessions[1].Status)
	}
}

func TestSessionsForSeed(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	if _, err := cdb.SaveCrawl(ctx, sampleResult("https://a.example.com/")); err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}
	if _, err := cdb.SaveCrawl(ctx, sampleResult("https://b.example.com/")); err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}

	sessions, err := cdb.SessionsForSeed(ctx, "https://a.example.com/")
	if err != nil {
		t.Fatalf("failed to query sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].SeedURL != "https://a.example.com/" {
		t.Errorf("seed = %q", sessions[0].SeedURL)
	}
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	id, err := cdb.SaveCrawl(ctx, sampleResult("https://example.com/"))
	if err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}

	deleted, err := cdb.DeleteSession(ctx, id)
	if err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}
	if !deleted {
		t.Error("expected session to be deleted")
	}

	got, err := cdb.GetCrawl(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	deleted, err = cdb.DeleteSession(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected false for already-deleted session")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"rfc3339 nano", "2025-03-01T12:00:00.5Z", false},
		{"sqlite default", "2025-03-01 12:00:00", false},
		{"garbage", "not a time", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero = %v", tt.input, got, tt.zero)
			}
		})
	}
}
