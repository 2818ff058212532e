// Package robots decides whether a page may be fetched according to the
// site's robots.txt.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Group is one User-agent block of a robots.txt file.
type Group struct {
	Agents     []string
	Allow      []string
	Disallow   []string
	CrawlDelay time.Duration
}

// Rules is a parsed robots.txt. The zero value allows everything.
type Rules struct {
	Groups []Group
}

// Parse reads robots.txt text. Unknown directives and malformed lines are
// ignored.
func Parse(text string) Rules {
	var groups []Group
	current := Group{}
	flush := func() {
		if len(current.Agents) == 0 {
			current = Group{}
			return
		}
		groups = append(groups, current)
		current = Group{}
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent":
			// a new agent line after rules starts a new group
			if len(current.Allow)+len(current.Disallow) > 0 || current.CrawlDelay > 0 {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		case "crawl-delay":
			if d, err := time.ParseDuration(val + "s"); err == nil {
				current.CrawlDelay = d
			}
		}
	}
	flush()
	return Rules{Groups: groups}
}

// group returns the block for userAgent: the longest agent token contained
// in the user agent, else the '*' block.
func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(userAgent)
	best, bestScore := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	if best < 0 {
		return Group{}, false
	}
	return r.Groups[best], true
}

// Allowed reports whether path (with optional query) may be fetched by
// userAgent. The most specific matching rule wins; Allow wins ties; no
// matching rule means allowed.
func (r Rules) Allowed(userAgent, path string) bool {
	g, ok := r.group(userAgent)
	if !ok {
		return true
	}
	bestLen, allowed := -1, true
	consider := func(patterns []string, allow bool) {
		for _, p := range patterns {
			if p == "" || !match(p, path) {
				continue
			}
			n := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if n > bestLen || (n == bestLen && allow) {
				bestLen, allowed = n, allow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allowed
}

// CrawlDelay returns the crawl delay for userAgent, or zero.
func (r Rules) CrawlDelay(userAgent string) time.Duration {
	g, _ := r.group(userAgent)
	return g.CrawlDelay
}

// match reports whether the robots pattern matches path from its start.
// '*' matches any run of bytes and a trailing '$' anchors the end.
func match(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	for i, part := range parts[1:] {
		last := i == len(parts)-2
		if last && anchored {
			return strings.HasSuffix(rest, part)
		}
		j := strings.Index(rest, part)
		if j < 0 {
			return false
		}
		rest = rest[j+len(part):]
	}
	if anchored && len(parts) == 1 {
		return rest == ""
	}
	return true
}

// Manager fetches and memoizes robots.txt per host.
type Manager struct {
	HTTPClient *http.Client
	UserAgent  string
	// EntryExpiry bounds how long parsed rules are reused. Zero means 30m.
	EntryExpiry time.Duration

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

type entry struct {
	rules  Rules
	expiry time.Time
}

// Allowed fetches the robots.txt of pageURL's host (or reuses a memoized
// copy) and checks pageURL against it. A missing robots.txt (4xx) allows
// everything; server errors are returned.
func (m *Manager) Allowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	rules, err := m.rules(ctx, robotsURL)
	if err != nil {
		return false, err
	}
	return rules.Allowed(m.UserAgent, u.RequestURI()), nil
}

func (m *Manager) rules(ctx context.Context, robotsURL string) (Rules, error) {
	m.mu.Lock()
	if m.now == nil {
		m.now = time.Now
	}
	if m.mem == nil {
		m.mem = make(map[string]entry)
	}
	if e, ok := m.mem[robotsURL]; ok && m.now().Before(e.expiry) {
		m.mu.Unlock()
		return e.rules, nil
	}
	m.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, err
	}
	defer resp.Body.Close()

	var rules Rules
	switch {
	case resp.StatusCode >= 500:
		return Rules{}, fmt.Errorf("robots.txt: server error: %d", resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		b, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
		if err != nil {
			return Rules{}, fmt.Errorf("read robots: %w", err)
		}
		rules = Parse(string(b))
	}

	exp := m.EntryExpiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	m.mu.Lock()
	m.mem[robotsURL] = entry{rules: rules, expiry: m.now().Add(exp)}
	m.mu.Unlock()
	return rules, nil
}
