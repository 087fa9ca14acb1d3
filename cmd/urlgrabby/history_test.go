package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urlgrabby/urlgrabby/internal/database"
	"github.com/urlgrabby/urlgrabby/internal/model"
)

// seedHistoryDB creates a history database with one stored crawl.
func seedHistoryDB(t *testing.T) (dir string, id int64) {
	t.Helper()

	dir = t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err = db.SaveCrawl(context.Background(), &model.CrawlResult{
		SeedURL:    "https://example.com/",
		Status:     model.StatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Records: []*model.PageRecord{
			{URL: "https://example.com/", Title: "Home", Heading: "Welcome"},
		},
	})
	if err != nil {
		t.Fatalf("failed to save crawl: %v", err)
	}
	return dir, id
}

// runHistory executes the history command with the given flags.
func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewHistoryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has export and delete flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("export") == nil {
			t.Error("expected export flag")
		}
		if cmd.Flags().Lookup("delete") == nil {
			t.Error("expected delete flag")
		}
	})
}

func TestHistoryList(t *testing.T) {
	t.Parallel()

	dir, _ := seedHistoryDB(t)

	out, err := runHistory(t, "--db-dir", dir)
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}
	if !strings.Contains(out, "https://example.com/") {
		t.Errorf("expected seed in listing:\n%s", out)
	}
	if !strings.Contains(out, "completed") {
		t.Errorf("expected status in listing:\n%s", out)
	}
}

func TestHistoryListFilterBySeed(t *testing.T) {
	t.Parallel()

	dir, _ := seedHistoryDB(t)

	out, err := runHistory(t, "--db-dir", dir, "--seed", "https://other.example.com/")
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}
	if !strings.Contains(out, "No stored crawls.") {
		t.Errorf("expected empty listing for unknown seed:\n%s", out)
	}
}

func TestHistoryExport(t *testing.T) {
	t.Parallel()

	t.Run("to stdout", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistoryDB(t)

		out, err := runHistory(t, "--db-dir", dir, "--export", "1")
		if err != nil {
			t.Fatalf("history export failed: %v", err)
		}
		if !strings.Contains(out, "URL,Page Title,Main Heading") {
			t.Errorf("expected CSV header:\n%s", out)
		}
		if !strings.Contains(out, "Home,Welcome") {
			t.Errorf("expected page row:\n%s", out)
		}
	})

	t.Run("to file", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistoryDB(t)
		path := filepath.Join(t.TempDir(), "out.csv")

		out, err := runHistory(t, "--db-dir", dir, "--export", "1", "--output", path)
		if err != nil {
			t.Fatalf("history export failed: %v", err)
		}
		if !strings.Contains(out, "Wrote "+path) {
			t.Errorf("expected write confirmation:\n%s", out)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistoryDB(t)

		if _, err := runHistory(t, "--db-dir", dir, "--export", "99"); err == nil {
			t.Error("expected error for unknown session ID")
		}
	})
}

func TestHistoryDelete(t *testing.T) {
	t.Parallel()

	dir, _ := seedHistoryDB(t)

	out, err := runHistory(t, "--db-dir", dir, "--delete", "1")
	if err != nil {
		t.Fatalf("history delete failed: %v", err)
	}
	if !strings.Contains(out, "Deleted session 1") {
		t.Errorf("expected delete confirmation:\n%s", out)
	}

	out, err = runHistory(t, "--db-dir", dir)
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "No stored crawls.") {
		t.Errorf("expected empty listing after delete:\n%s", out)
	}
}

func TestHistoryMissingDatabase(t *testing.T) {
	t.Parallel()

	if _, err := runHistory(t, "--db-dir", t.TempDir()); err == nil {
		t.Error("expected error when no database exists")
	}
}
