// Package main provides the entry point for the urlgrabby CLI.
//
// urlgrabby crawls a website one host at a time and exports every page's
// URL, title, and main heading to CSV, JSON, or Markdown.
//
// Usage:
//
//	urlgrabby crawl https://example.com
//	urlgrabby history --list
//
// See --help for all available options.
package main

// main is the entry point for urlgrabby.
func main() {
	Execute()
}
