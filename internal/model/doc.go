// Package model defines the core data structures used throughout urlgrabby.
//
// This package contains the following main types:
//   - PageRecord: The extracted metadata for one fetched page
//   - CrawlResult: The outcome of a whole crawl (records plus status)
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
