package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const sample = `# index provider
User-agent: *
Disallow: /private/
Disallow: /*.pdf$
Allow: /private/indices/

User-agent: goindex
Disallow: /constituents
Crawl-delay: 2
`

func TestRules_Allowed(t *testing.T) {
	r := Parse(sample)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"Mozilla/5.0", "/performance", true},
		{"Mozilla/5.0", "/private/x", false},
		{"Mozilla/5.0", "/private/indices/GX50", true},
		{"Mozilla/5.0", "/factsheet.pdf", false},
		{"Mozilla/5.0", "/factsheet.pdf?x=1", true},
		{"goindex/1.0", "/constituents?index=GX50", false},
		{"goindex/1.0", "/private/x", true},
	}
	for _, c := range cases {
		if got := r.Allowed(c.ua, c.path); got != c.want {
			t.Fatalf("Allowed(%q, %q) = %v, want %v", c.ua, c.path, got, c.want)
		}
	}
	if d := r.CrawlDelay("goindex/1.0"); d != 2*time.Second {
		t.Fatalf("crawl delay = %v", d)
	}
	if !(Rules{}).Allowed("any", "/x") {
		t.Fatalf("empty rules must allow")
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/a", "/abc", true},
		{"/a$", "/abc", false},
		{"/a$", "/a", true},
		{"/*/x", "/p/q/x/y", true},
		{"/*.html$", "/p/index.html", true},
		{"/*.html$", "/p/index.htm", false},
		{"/b", "/a", false},
	}
	for _, c := range cases {
		if got := match(c.pattern, c.path); got != c.want {
			t.Fatalf("match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestManager_FetchesOncePerHost(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	m := &Manager{UserAgent: "goindex/1.0"}
	ok, err := m.Allowed(context.Background(), srv.URL+"/performance")
	if err != nil || !ok {
		t.Fatalf("performance: ok=%v err=%v", ok, err)
	}
	ok, err = m.Allowed(context.Background(), srv.URL+"/constituents?index=GX50")
	if err != nil || ok {
		t.Fatalf("constituents: ok=%v err=%v", ok, err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("robots fetched %d times, want 1", got)
	}
}

func TestManager_MissingRobotsAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ok, err := (&Manager{}).Allowed(context.Background(), srv.URL+"/anything")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestManager_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := (&Manager{}).Allowed(context.Background(), srv.URL+"/x"); err == nil {
		t.Fatalf("expected error on 503")
	}
}
