package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Page sources: an http(s) URL or a path to a saved page. Empty sources
	// are skipped.
	ListingsSource     string
	PerformanceSource  string
	ConstituentsSource string

	// Output
	OutputPath    string
	OutputPDFPath string
	Title         string
	// TopConstituents limits the constituents shown, heaviest first.
	// Zero shows all in page order.
	TopConstituents int
	Quiet           bool

	// HTTP
	UserAgent     string
	MaxAttempts   int
	Timeout       time.Duration
	MaxConcurrent int
	// IgnoreRobots skips the robots.txt check for http(s) sources.
	IgnoreRobots bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheMaxBytes    int64 // total size of cached bodies; zero disables
	CacheClear       bool
	CacheStrictPerms bool
	BypassCache      bool

	Verbose bool
}

const (
	defaultUserAgent   = "goindex/1.0 (+https://github.com/hyperifyio/goindex)"
	defaultTitle       = "Index report"
	defaultMaxAttempts = 3
	defaultTimeout     = 20 * time.Second
	defaultCacheDir    = ".goindex-cache"
)

// DefaultConfig returns the configuration used before file, env and flags
// are applied.
func DefaultConfig() Config {
	return Config{
		Title:       defaultTitle,
		UserAgent:   defaultUserAgent,
		MaxAttempts: defaultMaxAttempts,
		Timeout:     defaultTimeout,
		CacheDir:    defaultCacheDir,
	}
}
