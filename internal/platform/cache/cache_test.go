package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zeebo/blake3"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), time.Hour, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}
	if c.Dir() == "" {
		t.Error("enabled cache should report its dir")
	}

	d, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if d.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	t.Parallel()

	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")
	if _, err := New(cacheDir, time.Hour, true); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestSetAndGet(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := "GET https://api.github.com/repos/octo/hello/commits?page=1"
	data := []byte(`[{"sha":"abc"}]`)

	if err := c.Set(key, data); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() returned false for existing key")
	}
	if string(got) != string(data) {
		t.Errorf("Get() = %q, want %q", string(got), string(data))
	}
}

func TestGetNonExistent(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	if _, ok := c.Get("nonexistent-key"); ok {
		t.Error("Get() should return false for non-existent key")
	}
}

func TestGetCorruptEntryMisses(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	sum := blake3.Sum256([]byte("bad"))
	if err := os.WriteFile(c.entryPath(sum), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("Get() should miss on corrupt entry")
	}
}

func TestTTLExpiryDeletesEntry(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := "stale-key"

	// seed an entry dated beyond the TTL
	sum := blake3.Sum256([]byte(key))
	blob, _ := json.Marshal(Entry{Key: key, Timestamp: time.Now().Add(-2 * time.Hour), Data: []byte("old")})
	if err := os.WriteFile(c.entryPath(sum), blob, 0o600); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	if _, ok := c.Get(key); ok {
		t.Error("Get() should miss after TTL")
	}
	if _, err := os.Stat(c.entryPath(sum)); !os.IsNotExist(err) {
		t.Error("expired entry should be deleted on read")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	c, err := New(filepath.Join(t.TempDir(), "cache"), 0, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	key := "forever"
	sum := blake3.Sum256([]byte(key))
	blob, _ := json.Marshal(Entry{Key: key, Timestamp: time.Now().Add(-240 * time.Hour), Data: []byte("keep")})
	if err := os.WriteFile(c.entryPath(sum), blob, 0o600); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	if _, ok := c.Get(key); !ok {
		t.Error("zero TTL should never expire entries")
	}
}

func TestClearKeepsDirectory(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		if err := c.Set(k, []byte("data")); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Clear() left %d entries", stats.Entries)
	}

	// cache stays usable after a clear
	if err := c.Set("after", []byte("x")); err != nil {
		t.Fatalf("Set() after Clear() error: %v", err)
	}
	if _, ok := c.Get("after"); !ok {
		t.Error("Get() after Clear() should hit")
	}
}

func TestDisabledCache(t *testing.T) {
	t.Parallel()

	c, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := c.Set("key", []byte("data")); err != nil {
		t.Errorf("Set() on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get() on disabled cache should return false")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on disabled cache should not error: %v", err)
	}
}

func TestHashBytes(t *testing.T) {
	t.Parallel()

	hash1 := HashBytes([]byte("hello world"))
	hash2 := HashBytes([]byte("hello world"))
	hash3 := HashBytes([]byte("different"))

	if hash1 == "" {
		t.Error("HashBytes() returned empty hash")
	}
	if hash1 != hash2 {
		t.Error("HashBytes() should return consistent hashes for same content")
	}
	if hash1 == hash3 {
		t.Error("HashBytes() should return different hashes for different content")
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("empty cache should have 0 entries, got %d", stats.Entries)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(k, []byte("data")); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 3 {
		t.Errorf("cache should have 3 entries, got %d", stats.Entries)
	}
	if stats.TotalSize <= 0 {
		t.Error("TotalSize should be positive")
	}
}

func TestGetStatsDisabled(t *testing.T) {
	t.Parallel()

	c, _ := New("", 0, false)
	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("disabled cache stats should have 0 entries, got %d", stats.Entries)
	}
}

func TestSpecialCharactersInKey(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	keys := []string{
		"GET https://api.github.com/repos/octo/hello/pulls?state=all&page=2",
		"key:with:colons",
		"key with spaces",
		"unicode/저장소/test",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			data := []byte("data for " + key)
			if err := c.Set(key, data); err != nil {
				t.Errorf("Set(%q) error: %v", key, err)
				return
			}
			got, ok := c.Get(key)
			if !ok {
				t.Errorf("Get(%q) returned false", key)
				return
			}
			if string(got) != string(data) {
				t.Errorf("Get(%q) = %q, want %q", key, string(got), string(data))
			}
		})
	}
}

func TestConcurrentSameKey(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := "contended"

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Set(key, []byte("payload"))
		}()
		go func() {
			defer wg.Done()
			if data, ok := c.Get(key); ok && string(data) != "payload" {
				t.Errorf("torn read: %q", data)
			}
		}()
	}
	wg.Wait()
}
