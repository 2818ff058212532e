package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes page entries whose SavedAt is older than maxAge and
// returns how many were removed. Unreadable meta files are skipped.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e PageEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if now.Sub(e.SavedAt) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		return nil
	})
	return removed, err
}

type bodyFile struct {
	base  string
	size  int64
	mtime time.Time
}

// EnforceLimits evicts least recently used entries until the bodies fit in
// maxBytes and at most maxEntries remain. Zero disables a limit.
func EnforceLimits(dir string, maxBytes int64, maxEntries int) (int, error) {
	if maxBytes <= 0 && maxEntries <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var files []bodyFile
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".body") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, bodyFile{
			base:  filepath.Join(dir, strings.TrimSuffix(e.Name(), ".body")),
			size:  info.Size(),
			mtime: info.ModTime(),
		})
		total += info.Size()
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })

	removed := 0
	for _, f := range files {
		overBytes := maxBytes > 0 && total > maxBytes
		overCount := maxEntries > 0 && len(files)-removed > maxEntries
		if !overBytes && !overCount {
			break
		}
		_ = os.Remove(f.base + ".body")
		_ = os.Remove(f.base + ".meta.json")
		total -= f.size
		removed++
	}
	return removed, nil
}
