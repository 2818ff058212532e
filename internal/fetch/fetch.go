package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goindex/internal/cache"
)

// Page is a fetched document decoded to UTF-8.
type Page struct {
	URL         string
	ContentType string
	Text        string
}

// Client wraps http.Client with timeouts, limited retry on transient errors
// and an optional on-disk page cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	Cache             *cache.PageCache
	// BypassCache skips revalidation and always fetches fresh, but still
	// stores the response.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// ErrUnsupportedContentType is returned for responses that are not HTML.
var ErrUnsupportedContentType = errors.New("unsupported content type")

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get fetches rawURL and decodes the body to UTF-8 text.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	body, ct, err := c.getBytes(ctx, rawURL)
	if err != nil {
		return Page{}, err
	}
	text, err := decode(body, ct)
	if err != nil {
		return Page{}, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return Page{URL: rawURL, ContentType: ct, Text: text}, nil
}

func (c *Client) getBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if resp.status == http.StatusNotModified && c.Cache != nil {
				cached, err := c.Cache.LoadBody(ctx, rawURL)
				if err != nil {
					return nil, "", fmt.Errorf("304 without cached body: %w", err)
				}
				if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && resp.contentType == "" {
					resp.contentType = meta.ContentType
				}
				log.Debug().Str("url", rawURL).Msg("page not modified; served from cache")
				return cached, resp.contentType, nil
			}
			if c.Cache != nil && resp.status == http.StatusOK {
				if err := c.Cache.Save(ctx, rawURL, resp.contentType, resp.etag, resp.lastModified, resp.body); err != nil {
					log.Warn().Err(err).Str("url", rawURL).Msg("page cache save failed")
				}
			}
			return resp.body, resp.contentType, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return nil, "", err
		}
		lastErr = err
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(out.contentType) {
		return response{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, out.contentType)
	}
	out.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

// isTransient treats 5xx responses and per-request deadlines as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	maxHops := c.RedirectMaxHops
	if maxHops <= 0 {
		maxHops = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	<-c.limiter
}
