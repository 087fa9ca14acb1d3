package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/urlgrabby/urlgrabby/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl sessions.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all sessions rather
// than one file per seed. This keeps history queries in one place and
// simplifies backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "urlgrabby.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and crawl history writes are
	// bursty and sequential, so a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Sessions store one row per crawl run
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		pages_visited INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_seed ON sessions(seed_url);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Pages store one row per visited URL, in visit order
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		heading TEXT,
		status_code INTEGER,
		content_type TEXT,
		UNIQUE(session_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawl stores a finished crawl result and returns the session ID.
// The session row and all page rows are written in one transaction so a
// partial save never appears in history.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, result *model.CrawlResult) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (seed_url, status, started_at, finished_at, pages_visited)
	VALUES (?, ?, ?, ?, ?)
	`,
		result.SeedURL,
		string(result.Status),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		result.PagesVisited(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (session_id, position, url, title, heading, status_code, content_type)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range result.Records {
		if _, err := stmt.ExecContext(ctx, sessionID, i, rec.URL, rec.Title, rec.Heading, rec.StatusCode, rec.ContentType); err != nil {
			return 0, fmt.Errorf("failed to insert page %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return sessionID, nil
}

// Session contains summary information about a stored crawl.
// This is used for displaying history without loading every page row.
type Session struct {
	// ID is the unique identifier of the session in the database.
	ID int64

	// SeedURL is the URL the crawl started from.
	SeedURL string

	// Status is the terminal crawl status.
	Status model.CrawlStatus

	// StartedAt and FinishedAt bound the crawl's lifetime.
	StartedAt  time.Time
	FinishedAt time.Time

	// PagesVisited is the number of pages stored for this session.
	PagesVisited int
}

// ListSessions returns all stored sessions, most recent first.
func (cdb *CrawlDB) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, seed_url, status, started_at, finished_at, pages_visited
	FROM sessions
	ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var status, startedAt, finishedAt string

		if err := rows.Scan(&s.ID, &s.SeedURL, &status, &startedAt, &finishedAt, &s.PagesVisited); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Status = model.CrawlStatus(status)
		s.StartedAt = parseTimestamp(startedAt)
		s.FinishedAt = parseTimestamp(finishedAt)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetCrawl reconstructs a stored crawl result by session ID.
// Returns nil without error when the session does not exist.
func (cdb *CrawlDB) GetCrawl(ctx context.Context, sessionID int64) (*model.CrawlResult, error) {
	var result model.CrawlResult
	var status, startedAt, finishedAt string

	err := cdb.db.QueryRowContext(ctx, `
	SELECT seed_url, status, started_at, finished_at
	FROM sessions
	WHERE id = ?
	`, sessionID).Scan(&result.SeedURL, &status, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	result.Status = model.CrawlStatus(status)
	result.StartedAt = parseTimestamp(startedAt)
	result.FinishedAt = parseTimestamp(finishedAt)

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, title, heading, status_code, content_type
	FROM pages
	WHERE session_id = ?
	ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.PageRecord
		if err := rows.Scan(&rec.URL, &rec.Title, &rec.Heading, &rec.StatusCode, &rec.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		result.Records = append(result.Records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

// DeleteSession removes a session and its pages.
// Returns false without error when the session does not exist.
func (cdb *CrawlDB) DeleteSession(ctx context.Context, sessionID int64) (bool, error) {
	// The pages table declares ON DELETE CASCADE, but SQLite only honors
	// it with foreign keys enabled, so pages are removed explicitly.
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE session_id = ?", sessionID); err != nil {
		return false, fmt.Errorf("failed to delete pages: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return affected > 0, nil
}

// SessionsForSeed returns stored sessions for one seed URL, most recent first.
func (cdb *CrawlDB) SessionsForSeed(ctx context.Context, seedURL string) ([]Session, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, seed_url, status, started_at, finished_at, pages_visited
	FROM sessions
	WHERE seed_url = ?
	ORDER BY started_at DESC, id DESC
	`, seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var status, startedAt, finishedAt string

		if err := rows.Scan(&s.ID, &s.SeedURL, &status, &startedAt, &finishedAt, &s.PagesVisited); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Status = model.CrawlStatus(status)
		s.StartedAt = parseTimestamp(startedAt)
		s.FinishedAt = parseTimestamp(finishedAt)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // session timestamps are stored in this format
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
