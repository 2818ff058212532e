package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// decode converts body to UTF-8. A charset parameter in contentType wins;
// without one, valid UTF-8 is taken as is and anything else goes through
// the <meta>/BOM sniffing of x/net/html/charset.
func decode(body []byte, contentType string) (string, error) {
	if _, params, err := mime.ParseMediaType(contentType); err != nil || params["charset"] == "" {
		if utf8.Valid(body) {
			return string(body), nil
		}
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Load returns the page behind source. http(s) URLs go through the client;
// anything else is read from disk, which lets saved pages be extracted
// offline.
func (c *Client) Load(ctx context.Context, source string) (Page, error) {
	if u, err := url.Parse(source); err == nil && isHTTPScheme(u) {
		return c.Get(ctx, source)
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return Page{}, fmt.Errorf("read page: %w", err)
	}
	text, err := decode(b, "")
	if err != nil {
		return Page{}, fmt.Errorf("decode %s: %w", source, err)
	}
	return Page{URL: source, ContentType: "text/html", Text: text}, nil
}
