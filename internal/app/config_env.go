package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with GOINDEX_* environment
// variables that are set. Env takes precedence over the config file; flags
// are applied afterwards and win over both.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				*dst = n
			}
		}
	}
	setInt64 := func(dst *int64, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
				*dst = n
			}
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	setString(&cfg.ListingsSource, "GOINDEX_LISTINGS")
	setString(&cfg.PerformanceSource, "GOINDEX_PERFORMANCE")
	setString(&cfg.ConstituentsSource, "GOINDEX_CONSTITUENTS")
	setString(&cfg.OutputPath, "GOINDEX_OUTPUT")
	setString(&cfg.OutputPDFPath, "GOINDEX_OUTPUT_PDF")
	setString(&cfg.UserAgent, "GOINDEX_USER_AGENT")
	setString(&cfg.CacheDir, "GOINDEX_CACHE_DIR")

	setInt(&cfg.TopConstituents, "GOINDEX_TOP")
	setInt(&cfg.MaxAttempts, "GOINDEX_MAX_ATTEMPTS")
	setInt(&cfg.MaxConcurrent, "GOINDEX_MAX_CONCURRENT")
	setInt(&cfg.CacheMaxEntries, "GOINDEX_CACHE_MAX_ENTRIES")
	setInt64(&cfg.CacheMaxBytes, "GOINDEX_CACHE_MAX_BYTES")

	setDuration(&cfg.Timeout, "GOINDEX_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, "GOINDEX_CACHE_MAX_AGE")

	setBool(&cfg.Verbose, "GOINDEX_VERBOSE")
	setBool(&cfg.Quiet, "GOINDEX_QUIET")
	setBool(&cfg.CacheClear, "GOINDEX_CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "GOINDEX_CACHE_STRICT_PERMS")
	setBool(&cfg.BypassCache, "GOINDEX_CACHE_BYPASS")
	setBool(&cfg.IgnoreRobots, "GOINDEX_IGNORE_ROBOTS")
}
