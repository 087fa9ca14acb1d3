// Package config provides configuration structures and utilities for
// urlgrabby. It defines the main configuration options for crawling,
// rate limiting, persistence, and export preferences.
package config
