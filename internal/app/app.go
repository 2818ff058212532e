package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goindex/internal/cache"
	"github.com/hyperifyio/goindex/internal/fetch"
	"github.com/hyperifyio/goindex/internal/index"
	"github.com/hyperifyio/goindex/internal/report"
	"github.com/hyperifyio/goindex/internal/robots"
)

// ErrDisallowed is returned when robots.txt forbids fetching a source.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// pageLoader is satisfied by *fetch.Client; tests substitute their own.
type pageLoader interface {
	Load(ctx context.Context, source string) (fetch.Page, error)
}

// robotsChecker is satisfied by *robots.Manager.
type robotsChecker interface {
	Allowed(ctx context.Context, pageURL string) (bool, error)
}

type App struct {
	cfg    Config
	loader pageLoader
	robots robotsChecker
	out    io.Writer
}

func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	client := &fetch.Client{
		HTTPClient:        newHTTPClient(),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.Timeout,
		BypassCache:       cfg.BypassCache,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged expired pages")
		}
		if n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxEntries); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache limit enforcement failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("evicted pages over cache limit")
		}
		client.Cache = &cache.PageCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	a := &App{cfg: cfg, loader: client, out: os.Stdout}
	if !cfg.IgnoreRobots {
		a.robots = &robots.Manager{HTTPClient: client.HTTPClient, UserAgent: cfg.UserAgent}
	}
	return a, nil
}

type pageKind string

const (
	kindListings     pageKind = "listings"
	kindPerformance  pageKind = "performance"
	kindConstituents pageKind = "constituents"
)

type job struct {
	kind   pageKind
	source string
}

type result struct {
	table report.Table
	err   error
}

func (a *App) jobs() []job {
	all := []job{
		{kindListings, a.cfg.ListingsSource},
		{kindPerformance, a.cfg.PerformanceSource},
		{kindConstituents, a.cfg.ConstituentsSource},
	}
	out := make([]job, 0, len(all))
	for _, j := range all {
		if j.source != "" {
			out = append(out, j)
		}
	}
	return out
}

// Run loads every configured page, extracts its records and writes the
// report. Pages are processed concurrently; the report keeps the order
// listings, performance, constituents. The first failing page in that
// order decides the returned error and nothing is written.
func (a *App) Run(ctx context.Context) error {
	jobs := a.jobs()
	results := make([]result, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			results[i] = a.process(ctx, j)
		}(i, j)
	}
	wg.Wait()

	tables := make([]report.Table, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			return fmt.Errorf("%s page %s: %w", jobs[i].kind, jobs[i].source, r.err)
		}
		tables = append(tables, r.table)
	}

	if !a.cfg.Quiet {
		report.RenderConsole(a.out, tables...)
	}
	if a.cfg.OutputPath != "" {
		md := report.Markdown(a.cfg.Title, tables...)
		if err := os.WriteFile(a.cfg.OutputPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPath).Msg("markdown report written")
	}
	if a.cfg.OutputPDFPath != "" {
		if err := report.WritePDF(a.cfg.OutputPDFPath, a.cfg.Title, tables...); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPDFPath).Msg("pdf report written")
	}
	return nil
}

func (a *App) process(ctx context.Context, j job) result {
	start := time.Now()
	if err := a.checkRobots(ctx, j.source); err != nil {
		return result{err: err}
	}
	page, err := a.loader.Load(ctx, j.source)
	if err != nil {
		return result{err: fmt.Errorf("load: %w", err)}
	}
	logger := log.With().Str("kind", string(j.kind)).Str("source", j.source).Int("bytes", len(page.Text)).Logger()

	var (
		t    report.Table
		rows int
	)
	switch j.kind {
	case kindListings:
		var ls []index.Listing
		ls, err = index.ParseListings(page.Text)
		rows, t = len(ls), report.Listings(ls)
	case kindPerformance:
		var ps []index.Performance
		ps, err = index.ParsePerformance(page.Text)
		rows, t = len(ps), report.Performance(ps)
	case kindConstituents:
		var cs []index.Constituent
		cs, err = index.ParseConstituents(page.Text)
		rows, t = len(cs), constituentsTable(cs, a.cfg.TopConstituents)
	default:
		err = fmt.Errorf("unknown page kind %q", j.kind)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("extraction failed")
		return result{err: err}
	}
	logger.Info().Int("rows", rows).Dur("took", time.Since(start)).Msg("page extracted")
	return result{table: t}
}

// checkRobots consults robots.txt for http(s) sources. Local files are
// never checked.
func (a *App) checkRobots(ctx context.Context, source string) error {
	if a.robots == nil {
		return nil
	}
	lower := strings.ToLower(source)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	ok, err := a.robots.Allowed(ctx, source)
	if err != nil {
		return fmt.Errorf("robots: %w", err)
	}
	if !ok {
		return ErrDisallowed
	}
	return nil
}

// constituentsTable shows the top n constituents by weight, or all of them
// in page order when n is zero. The footer always reflects the full table.
func constituentsTable(cs []index.Constituent, n int) report.Table {
	full := report.Constituents(cs)
	if n <= 0 || n >= len(cs) {
		return full
	}
	t := report.Constituents(index.Heaviest(cs, n))
	t.Footer = fmt.Sprintf("top %d by weight; %s", n, full.Footer)
	return t
}
