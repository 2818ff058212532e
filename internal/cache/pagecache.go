package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageEntry is the metadata stored next to a cached page body. It carries
// what conditional revalidation needs.
type PageEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores fetched pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url).
type PageCache struct {
	Dir string
	// StrictPerms restricts the directory to 0700 and files to 0600.
	StrictPerms bool
}

func (c *PageCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *PageCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		// MkdirAll leaves an existing directory's mode alone
		return os.Chmod(c.Dir, c.dirMode())
	}
	return nil
}

func (c *PageCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns the stored metadata for url.
func (c *PageCache) LoadMeta(_ context.Context, url string) (*PageEntry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(c.key(url)))
	if err != nil {
		return nil, err
	}
	var e PageEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the stored body for url and marks the entry as recently
// used.
func (c *PageCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	p := c.bodyPath(c.key(url))
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, nil
}

// Save stores body and its metadata. The meta file is written last through
// a rename so a reader never sees metadata without its body.
func (c *PageCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	if err := os.WriteFile(c.bodyPath(key), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta := PageEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	}
	b, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	f, err := os.CreateTemp(c.Dir, key+".meta-*.tmp")
	if err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	tmp := f.Name()
	_, werr := f.Write(b)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, c.fileMode())
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write meta: %w", werr)
	}
	return os.Rename(tmp, c.metaPath(key))
}
