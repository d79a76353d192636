package ingest

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Disk-backed content cache keyed by (URL, kind). One file per entry, plain
// text, no expiry — entries persist until CacheClear. The cache is a dev-loop
// accelerator: staleness is the caller's problem. When Cfg.CacheEnabled is
// false every call degrades to a pass-through, so callers never branch on it.

// CacheKey builds the cache filename for a URL and content kind.
// The kind suffix keeps the same URL fetched for different payloads
// (feed XML vs rendered HTML vs captions) from colliding.
func CacheKey(url, kind string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x.%s", hash[:16], kind)
}

// CacheGet returns cached content for (url, kind), if present and caching is enabled.
func CacheGet(url, kind string) (string, bool) {
	if !cfg.CacheEnabled {
		return "", false
	}
	path := filepath.Join(cfg.CacheDir, CacheKey(url, kind))
	data, err := os.ReadFile(path)
	if err != nil {
		cacheMisses.Add(1)
		return "", false
	}
	cacheHits.Add(1)
	slog.Debug("cache hit", slog.String("url", Truncate(url, 60)), slog.String("kind", kind))
	return string(data), true
}

// CacheSet stores content for (url, kind). No-op when caching is disabled.
// Whole-file writes; concurrent writers to the same key are last-write-wins.
func CacheSet(url, kind, content string) {
	if !cfg.CacheEnabled {
		return
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		slog.Warn("cache dir create failed", slog.Any("error", err))
		return
	}
	path := filepath.Join(cfg.CacheDir, CacheKey(url, kind))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		slog.Warn("cache write failed", slog.String("kind", kind), slog.Any("error", err))
		return
	}
	slog.Debug("cache save", slog.String("url", Truncate(url, 60)), slog.String("kind", kind))
}

// CacheClear removes all regular files in the cache directory and
// returns how many were deleted.
func CacheClear() (int, error) {
	entries, err := os.ReadDir(cfg.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(cfg.CacheDir, entry.Name())); err != nil {
			return count, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		count++
	}
	slog.Info("cache cleared", slog.Int("files", count))
	return count, nil
}
