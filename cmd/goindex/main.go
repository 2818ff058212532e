package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goindex/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitFailure)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		msg, code := app.Diagnose(err)
		log.Error().Err(err).Msg(msg)
		stop()
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

// loadConfig builds the configuration from defaults, an optional config
// file, the environment and finally the flags that were set explicitly.
func loadConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("goindex", flag.ContinueOnError)
	var (
		configPath string
		envFiles   string
		fl         = app.DefaultConfig()
	)
	fs.StringVar(&configPath, "config", os.Getenv("GOINDEX_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load before reading GOINDEX_* variables")
	fs.StringVar(&fl.ListingsSource, "listings", "", "URL or saved page holding the index selector")
	fs.StringVar(&fl.PerformanceSource, "performance", "", "URL or saved page holding the performance table")
	fs.StringVar(&fl.ConstituentsSource, "constituents", "", "URL or saved page holding the constituents table")
	fs.StringVar(&fl.OutputPath, "output", "", "Path to write the Markdown report")
	fs.StringVar(&fl.OutputPDFPath, "output.pdf", "", "Path to write a PDF report")
	fs.StringVar(&fl.Title, "title", fl.Title, "Report title")
	fs.IntVar(&fl.TopConstituents, "top", 0, "Show only the N heaviest constituents (0 shows all)")
	fs.BoolVar(&fl.Quiet, "q", false, "Do not print tables to stdout")
	fs.StringVar(&fl.UserAgent, "ua", fl.UserAgent, "User-Agent for page requests")
	fs.IntVar(&fl.MaxAttempts, "http.attempts", fl.MaxAttempts, "Attempts per page including the first")
	fs.DurationVar(&fl.Timeout, "http.timeout", fl.Timeout, "Per-request timeout")
	fs.IntVar(&fl.MaxConcurrent, "http.maxConcurrent", 0, "Maximum concurrent requests (0 is unlimited)")
	fs.BoolVar(&fl.IgnoreRobots, "http.ignoreRobots", false, "Fetch pages even when robots.txt disallows them")
	fs.StringVar(&fl.CacheDir, "cache.dir", fl.CacheDir, "Page cache directory (empty disables the cache)")
	fs.DurationVar(&fl.CacheMaxAge, "cache.maxAge", 0, "Purge cached pages older than this (0 disables)")
	fs.IntVar(&fl.CacheMaxEntries, "cache.maxEntries", 0, "Keep at most this many cached pages (0 disables)")
	fs.Int64Var(&fl.CacheMaxBytes, "cache.maxBytes", 0, "Keep cached page bodies under this many bytes (0 disables)")
	fs.BoolVar(&fl.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	fs.BoolVar(&fl.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&fl.BypassCache, "cache.bypass", false, "Always fetch fresh pages (responses are still cached)")
	fs.BoolVar(&fl.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := app.DefaultConfig()
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config %s: %w", configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listings":
			cfg.ListingsSource = fl.ListingsSource
		case "performance":
			cfg.PerformanceSource = fl.PerformanceSource
		case "constituents":
			cfg.ConstituentsSource = fl.ConstituentsSource
		case "output":
			cfg.OutputPath = fl.OutputPath
		case "output.pdf":
			cfg.OutputPDFPath = fl.OutputPDFPath
		case "title":
			cfg.Title = fl.Title
		case "top":
			cfg.TopConstituents = fl.TopConstituents
		case "q":
			cfg.Quiet = fl.Quiet
		case "ua":
			cfg.UserAgent = fl.UserAgent
		case "http.attempts":
			cfg.MaxAttempts = fl.MaxAttempts
		case "http.timeout":
			cfg.Timeout = fl.Timeout
		case "http.maxConcurrent":
			cfg.MaxConcurrent = fl.MaxConcurrent
		case "http.ignoreRobots":
			cfg.IgnoreRobots = fl.IgnoreRobots
		case "cache.dir":
			cfg.CacheDir = fl.CacheDir
		case "cache.maxAge":
			cfg.CacheMaxAge = fl.CacheMaxAge
		case "cache.maxEntries":
			cfg.CacheMaxEntries = fl.CacheMaxEntries
		case "cache.maxBytes":
			cfg.CacheMaxBytes = fl.CacheMaxBytes
		case "cache.clear":
			cfg.CacheClear = fl.CacheClear
		case "cache.strictPerms":
			cfg.CacheStrictPerms = fl.CacheStrictPerms
		case "cache.bypass":
			cfg.BypassCache = fl.BypassCache
		case "v":
			cfg.Verbose = fl.Verbose
		}
	})
	return cfg, nil
}
