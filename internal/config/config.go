package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These lean conservative on politeness: an unconfigured run should never
// hammer the site it crawls.
const (
	// DefaultTimeout is the per-request timeout. Ten seconds is generous
	// for a single HTML page on the open web; a hung connection past that
	// is recorded as a failed page rather than stalling the crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultCrawlDelay is the pause between the completion of one page
	// and the next fetch. One second is a conservative politeness setting
	// that keeps the crawler from hammering small sites.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultMaxPages bounds pages crawled per seed. This prevents runaway
	// crawling on large or infinitely-generating sites (calendars,
	// faceted search). Override via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// several seeds are given. Each crawl already rate-limits itself, so a
	// small batch keeps total outbound pressure predictable.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies urlgrabby in HTTP requests. A descriptive
	// User-Agent lets site operators recognize crawler traffic in logs.
	DefaultUserAgent = "urlgrabby/1.0 (+https://github.com/urlgrabby/urlgrabby)"

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB covers any real HTML page while bounding memory on misbehaving
	// servers.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "urlgrabby"
)

// Config holds all configuration options for urlgrabby.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
type Config struct {
	// Seeds is the list of starting URLs. Each seed produces one
	// independent crawl restricted to the seed's host.
	Seeds []string

	// Timeout is the HTTP timeout for each page fetch.
	Timeout time.Duration

	// CrawlDelay is the pause between requests within one crawl.
	// Zero disables the delay; negative values are invalid.
	CrawlDelay time.Duration

	// MaxPages caps the number of pages fetched per seed.
	MaxPages int

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// OutputPath is the export destination. Empty means a timestamped
	// file name in the working directory.
	OutputPath string

	// Format selects the export format: "csv" (default), "json", or
	// "markdown".
	Format string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .urlgrabby in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory holding the SQLite crawl-history database.
	// Empty means the XDG data directory.
	DBDir string

	// SaveToDB persists crawl sessions to the history database.
	SaveToDB bool

	// IgnorePatterns are URL path globs excluded from crawling
	// (e.g. "/logout*", "*.pdf").
	IgnorePatterns []string
}

// Export format names accepted by Config.Format.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDelay:  DefaultCrawlDelay,
		MaxPages:    DefaultMaxPages,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Format:      FormatCSV,
	}
}

// XDGDataDir returns the XDG data directory for urlgrabby.
// On Linux: ~/.local/share/urlgrabby
// On macOS: ~/Library/Application Support/urlgrabby
// On Windows: %LOCALAPPDATA%\urlgrabby
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for urlgrabby.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing the first problem found;
// fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Format {
	case FormatCSV, FormatJSON, FormatMarkdown:
	default:
		return ErrInvalidFormat
	}

	return nil
}
