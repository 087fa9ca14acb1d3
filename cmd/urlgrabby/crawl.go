package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/urlgrabby/urlgrabby/internal/config"
	"github.com/urlgrabby/urlgrabby/internal/crawler"
	"github.com/urlgrabby/urlgrabby/internal/database"
	ulog "github.com/urlgrabby/urlgrabby/internal/log"
	"github.com/urlgrabby/urlgrabby/internal/model"
	"github.com/urlgrabby/urlgrabby/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a website and export page titles and headings",
		Long: `Crawl traverses a website breadth-first starting from the seed URL.

Only pages on the seed's exact host are visited; links to subdomains and
other sites are recorded as discovered but never fetched. Each visited
page contributes one row with its URL, title, and first heading. Pages
that fail to load keep their row with empty title and heading.

Multiple seeds produce independent crawls, each restricted to its own
host, and each exported to its own file.

Examples:
  # Crawl a site and write urlgrabby_<timestamp>.csv
  urlgrabby crawl https://example.com

  # Slow down to one request every three seconds
  urlgrabby crawl --delay 3s https://example.com

  # Crawl several sites concurrently
  urlgrabby crawl --batch 2 https://a.example.com https://b.example.com

  # Export JSON to a chosen path
  urlgrabby crawl --format json --output report.json https://example.com

Configuration file (.urlgrabby) example:
  defaults:
    delay: 2s
  sites:
    docs.example.com:
      maxPages: 50
      ignorePatterns:
        - "*.pdf"
        - "/search*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Pause between requests within one crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per seed")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringSliceP("ignore", "i", nil,
		"URL path globs to skip (e.g. '*.pdf', '/search*'); repeatable")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .urlgrabby in current or home directory)")

	// Export flags
	cmd.Flags().StringP("output", "o", "",
		"Export file path (default: urlgrabby_<timestamp> in the working directory)")
	cmd.Flags().StringP("format", "f", config.FormatCSV,
		"Export format: csv, json, or markdown")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := ulog.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.IgnorePatterns, err = cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site configurations from the config file.
	// If the user explicitly named a file, it must exist.
	// Otherwise a missing file silently means no overrides.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes the crawl for all seeds and exports the results.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"delay", cfg.CrawlDelay,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the history database if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	startTime := time.Now()
	multi := len(cfg.Seeds) > 1

	batch := crawler.NewBatch(
		func(seed string) *crawler.Engine {
			return newEngineForSeed(cfg, seed, logger)
		},
		crawler.WithBatchConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	results, err := batch.Run(ctx, cfg.Seeds, func(seed string, ev crawler.Event) {
		mu.Lock()
		defer mu.Unlock()
		reportEvent(out, logger, seed, ev, multi)
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(out, "\nCrawl finished in %s\n", elapsed.Round(time.Millisecond))

	// Export and persist whatever results exist even when the run was
	// interrupted; a cancelled crawl still has pages worth keeping.
	for i, result := range results {
		if result == nil {
			continue
		}
		if exportErr := exportResult(cfg, result, startTime, i+1, multi, out); exportErr != nil {
			logger.Error("export failed", "seed", result.SeedURL, "error", exportErr)
			if err == nil {
				err = exportErr
			}
		}
		if saveErr := saveCrawl(ctx, db, result, logger); saveErr != nil {
			logger.Error("failed to save crawl", "seed", result.SeedURL, "error", saveErr)
		}
	}

	return err
}

// newEngineForSeed builds a crawl engine with per-host overrides applied.
func newEngineForSeed(cfg *config.Config, seed string, logger *slog.Logger) *crawler.Engine {
	delay := cfg.CrawlDelay
	maxPages := cfg.MaxPages
	userAgent := cfg.UserAgent
	ignore := cfg.IgnorePatterns
	var headers map[string]string

	if cfg.SiteConfigs != nil {
		if u, err := url.Parse(seed); err == nil && u.Host != "" {
			site := cfg.SiteConfigs.GetSiteConfig(u.Host)
			if !site.Delay.IsZero() {
				delay = site.Delay.Duration
			}
			if site.MaxPages > 0 {
				maxPages = site.MaxPages
			}
			if site.UserAgent != "" {
				userAgent = site.UserAgent
			}
			if len(site.IgnorePatterns) > 0 {
				// Copy before appending; the global slice is shared by
				// every seed's engine.
				ignore = append(append([]string(nil), cfg.IgnorePatterns...), site.IgnorePatterns...)
			}
			headers = site.Headers
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	return crawler.New(client,
		crawler.WithDelay(delay),
		crawler.WithMaxPages(maxPages),
		crawler.WithUserAgent(userAgent),
		crawler.WithHeaders(headers),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithIgnorePatterns(ignore),
		crawler.WithLogger(logger),
	)
}

// reportEvent prints one crawl event to the terminal.
func reportEvent(out io.Writer, logger *slog.Logger, seed string, ev crawler.Event, multi bool) {
	prefix := ""
	if multi {
		prefix = fmt.Sprintf("[%s] ", seed)
	}

	switch e := ev.(type) {
	case crawler.ProgressEvent:
		fmt.Fprintf(out, "%sVisited %d page(s), %d queued: %s\n",
			prefix, e.PagesVisited, e.FrontierSize, e.LastURL)
	case crawler.CompletedEvent:
		fmt.Fprintf(out, "%sCompleted: %d page(s) in %s\n",
			prefix, e.Result.PagesVisited(), e.Result.Duration().Round(time.Millisecond))
	case crawler.CancelledEvent:
		fmt.Fprintf(out, "%sCancelled after %d page(s)\n",
			prefix, e.Result.PagesVisited())
	case crawler.FailedEvent:
		logger.Error("crawl failed", "seed", seed, "error", e.Err)
		fmt.Fprintf(out, "%sFailed: %v\n", prefix, e.Err)
	}
}

// exportResult writes one crawl result to its export file.
func exportResult(cfg *config.Config, result *model.CrawlResult, startTime time.Time, seq int, multi bool, out io.Writer) error {
	path := exportPath(cfg, result.SeedURL, seq, startTime, multi)

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	n, err := report.ExportFile(result, path, cfg.Format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%d bytes, %d pages)\n", path, n, result.PagesVisited())
	return nil
}

// exportPath decides where one crawl result is written.
//
// A single seed uses --output as-is, or urlgrabby_<timestamp> with the
// format's extension when --output is empty. With multiple seeds a
// host-and-position tag is inserted before the extension; all seeds share
// one timestamp, so the position is what guarantees two seeds on the same
// host (or hosts differing only by port) never overwrite each other.
func exportPath(cfg *config.Config, seedURL string, seq int, startTime time.Time, multi bool) string {
	ext := report.Extension(cfg.Format)
	stamp := startTime.Format("20060102_150405")

	if !multi {
		if cfg.OutputPath != "" {
			return cfg.OutputPath
		}
		return fmt.Sprintf("urlgrabby_%s%s", stamp, ext)
	}

	tag := fmt.Sprintf("%s_%d", hostTag(seedURL), seq)

	if cfg.OutputPath == "" {
		return fmt.Sprintf("urlgrabby_%s_%s%s", tag, stamp, ext)
	}
	base := cfg.OutputPath
	if e := filepath.Ext(base); e != "" {
		return base[:len(base)-len(e)] + "_" + tag + e
	}
	return base + "_" + tag
}

// hostTag converts a seed's host, port included, into a file-name-safe
// label. Characters that are unsafe in file names (the port's colon among
// them) become hyphens.
func hostTag(seedURL string) string {
	u, err := url.Parse(seedURL)
	if err != nil || u.Host == "" {
		return "seed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '-'
		}
	}, u.Host)
}

// saveCrawl records a finished crawl in the history database.
// If db is nil, this function is a no-op.
func saveCrawl(ctx context.Context, db *database.CrawlDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// A cancelled run's context is already done; history writes should
	// still go through.
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	id, err := db.SaveCrawl(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved to history", "seed", result.SeedURL, "sessionID", id)
	return nil
}
