package config

// SiteConfig holds per-host overrides for crawl behavior.
// Keys in File.Sites are bare hosts (e.g. "docs.example.com" or
// "example.com:8080"), matching the exact-host crawl policy.
type SiteConfig struct {
	// Delay overrides the global crawl delay for this host.
	// Zero means the global delay applies.
	Delay Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the global User-Agent for this host.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page cap for this host.
	// Zero means the global cap applies.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path globs to skip while crawling this host.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .urlgrabby configuration file.
type File struct {
	// Sites maps hosts to their specific configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to every host unless
	// overridden in the host-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the host-specific configuration over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if !siteConfig.Delay.IsZero() {
			result.Delay = siteConfig.Delay
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if len(siteConfig.Headers) > 0 {
			// The struct copy above aliases the defaults' header map, so
			// merge into a fresh map; writing through the alias would leak
			// this host's headers into every later merge.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
	}

	return result
}
