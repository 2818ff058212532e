package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration schema.
type FileConfig struct {
	Sources struct {
		Listings     string `yaml:"listings" json:"listings"`
		Performance  string `yaml:"performance" json:"performance"`
		Constituents string `yaml:"constituents" json:"constituents"`
	} `yaml:"sources" json:"sources"`

	Output struct {
		Markdown string `yaml:"markdown" json:"markdown"`
		PDF      string `yaml:"pdf" json:"pdf"`
		Title    string `yaml:"title" json:"title"`
		Top      int    `yaml:"top" json:"top"`
		Quiet    bool   `yaml:"quiet" json:"quiet"`
	} `yaml:"output" json:"output"`

	HTTP struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		MaxAttempts   int           `yaml:"maxAttempts" json:"maxAttempts"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
		IgnoreRobots  bool          `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
		MaxBytes    int64         `yaml:"maxBytes" json:"maxBytes"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Bypass      bool          `yaml:"bypass" json:"bypass"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setString(&cfg.ListingsSource, fc.Sources.Listings)
	setString(&cfg.PerformanceSource, fc.Sources.Performance)
	setString(&cfg.ConstituentsSource, fc.Sources.Constituents)
	setString(&cfg.OutputPath, fc.Output.Markdown)
	setString(&cfg.OutputPDFPath, fc.Output.PDF)
	setString(&cfg.Title, fc.Output.Title)
	setString(&cfg.UserAgent, fc.HTTP.UserAgent)
	setString(&cfg.CacheDir, fc.Cache.Dir)

	if fc.Output.Top > 0 {
		cfg.TopConstituents = fc.Output.Top
	}
	if fc.HTTP.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.HTTP.MaxAttempts
	}
	if fc.HTTP.Timeout > 0 {
		cfg.Timeout = fc.HTTP.Timeout
	}
	if fc.HTTP.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.HTTP.MaxConcurrent
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if fc.Cache.MaxBytes > 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	cfg.Quiet = cfg.Quiet || fc.Output.Quiet
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
	cfg.BypassCache = cfg.BypassCache || fc.Cache.Bypass
	cfg.IgnoreRobots = cfg.IgnoreRobots || fc.HTTP.IgnoreRobots
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

// ErrNoSources is returned when no page source is configured.
var ErrNoSources = errors.New("config: no page source configured (set listings, performance or constituents)")

// ValidateConfig checks the settings Run depends on.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ListingsSource) == "" &&
		strings.TrimSpace(cfg.PerformanceSource) == "" &&
		strings.TrimSpace(cfg.ConstituentsSource) == "" {
		return ErrNoSources
	}
	if cfg.MaxAttempts < 0 || cfg.MaxConcurrent < 0 || cfg.TopConstituents < 0 ||
		cfg.CacheMaxEntries < 0 || cfg.CacheMaxBytes < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	return nil
}
