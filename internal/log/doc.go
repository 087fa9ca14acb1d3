// Package log provides crawl-friendly logging built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of oversized attribute values (page titles,
//     query-heavy URLs, server error bodies)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// Crawlers log values taken from arbitrary remote pages. A single <title>
// element or a tracking-parameter URL can run to kilobytes, which makes the
// progress log unreadable and can blow up log storage on long crawls. The
// TruncateHandler caps every string attribute at a fixed width before the
// record reaches the underlying handler.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("page crawled",
//	    "url", pageURL,      // truncated if oversized
//	    "title", pageTitle,  // truncated if oversized
//	)
//
//	slog.SetDefault(logger)
package log
