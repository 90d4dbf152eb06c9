// Package cache provides a file-based cache of JSON envelopes with TTL expiry.
// Entries are named by BLAKE3 of the caller's key; access is serialized per
// key-hash shard so concurrent readers and writers of the same key never race
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	perr "retroscope/internal/platform/errors"
)

const shardCount = 64

// Cache is a directory of JSON entries. A disabled cache is a no-op handle,
// not a nil pointer, so callers never branch on enablement
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	shards  [shardCount]sync.Mutex
}

// Entry is the on-disk envelope for one cached value
type Entry struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir with the given TTL.
// Disabled caches never touch the filesystem
func New(dir string, ttl time.Duration, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "creating cache dir %s", dir)
	}
	return &Cache{dir: dir, ttl: ttl, enabled: true}, nil
}

// Dir returns the cache root ("" when disabled)
func (c *Cache) Dir() string { return c.dir }

// Enabled reports whether the cache touches disk
func (c *Cache) Enabled() bool { return c.enabled }

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get retrieves the cached value for key when present and fresh.
// Expired entries are deleted on read
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	sum := blake3.Sum256([]byte(key))
	mu := &c.shards[sum[0]%shardCount]
	mu.Lock()
	defer mu.Unlock()

	path := c.entryPath(sum)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores data under key
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}

	blob, err := json.Marshal(Entry{Key: key, Timestamp: time.Now(), Data: data})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encoding cache entry")
	}

	sum := blake3.Sum256([]byte(key))
	mu := &c.shards[sum[0]%shardCount]
	mu.Lock()
	defer mu.Unlock()

	if err := os.WriteFile(c.entryPath(sum), blob, 0o600); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "writing cache entry")
	}
	return nil
}

// Clear removes every entry and keeps the cache directory in place
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "clearing cache")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "recreating cache dir")
	}
	return nil
}

// entryPath converts a key hash to a filesystem path
func (c *Cache) entryPath(sum [32]byte) string {
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats summarizes the on-disk state
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}

		return nil
	})

	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "walking cache dir")
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}

	return stats, nil
}
