// Package report writes crawl results in CSV, JSON, and Markdown formats.
package report
