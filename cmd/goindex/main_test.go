package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/goindex/internal/app"
	"github.com/hyperifyio/goindex/internal/extract"
)

const fixture = `<table id="performance"><thead><tr><th>Index</th><th>Last</th><th>Change %</th><th>YTD %</th></tr></thead>
<tbody><tr><td>GX50</td><td>4,512.30</td><td>+1.25%</td><td>18.40%</td></tr></tbody></table>`

// Smoke test: run writes the Markdown report for a saved page.
func TestRun_SavedPage_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "perf.html")
	out := filepath.Join(dir, "out.md")
	if err := os.WriteFile(in, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := app.DefaultConfig()
	cfg.PerformanceSource = in
	cfg.OutputPath = out
	cfg.Quiet = true
	cfg.CacheDir = filepath.Join(dir, "cache")
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || len(b) == 0 {
		t.Fatalf("expected output file, err=%v", err)
	}
}

// A renamed header surfaces as a schema mismatch with the extraction exit code.
func TestRun_SchemaMismatch_ExitCode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "perf.html")
	if err := os.WriteFile(in, []byte(strings.Replace(fixture, "<th>Last</th>", "<th>Close</th>", 1)), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := app.DefaultConfig()
	cfg.PerformanceSource = in
	cfg.Quiet = true
	cfg.CacheDir = filepath.Join(dir, "cache")
	err := run(context.Background(), cfg)
	if !errors.Is(err, extract.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if _, code := app.Diagnose(err); code != app.ExitExtraction {
		t.Fatalf("exit code = %d, want %d", code, app.ExitExtraction)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "goindex.yaml")
	yaml := "sources:\n  performance: file.html\n  constituents: file-c.html\nhttp:\n  timeout: 7s\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOINDEX_CONSTITUENTS", "env-c.html")
	t.Setenv("GOINDEX_PERFORMANCE", "env.html")

	cfg, err := loadConfig([]string{
		"-config", cfgPath,
		"-env", filepath.Join(dir, "none.env"),
		"-performance", "flag.html",
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.PerformanceSource != "flag.html" {
		t.Fatalf("flag should win, got %q", cfg.PerformanceSource)
	}
	if cfg.ConstituentsSource != "env-c.html" {
		t.Fatalf("env should beat file, got %q", cfg.ConstituentsSource)
	}
	if cfg.Timeout != 7*time.Second {
		t.Fatalf("file timeout not applied, got %v", cfg.Timeout)
	}
}

func TestLoadConfig_BadFlag(t *testing.T) {
	if _, err := loadConfig([]string{"-nope"}); err == nil {
		t.Fatalf("expected flag error")
	}
}
