package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"irislint/internal/balance"
)

// Current schema version - increment when CachedResult format changes
const resultCacheSchemaVersion uint16 = 1

// CacheKey identifies a scan result: file content plus scanner options.
type CacheKey [32]byte

// ResultCache хранит результаты сканирования на диске по CacheKey.
// Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedResult is the on-disk payload of one cache entry.
type CachedResult struct {
	// Schema version for safe invalidation when format changes
	Schema uint16
	// Options is the scanner fingerprint the result was produced with.
	Options string
	Result  balance.Result
}

// OpenResultCache initializes a cache under $XDG_CACHE_HOME/<app>
// (or ~/.cache/<app>).
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenResultCacheAt(filepath.Join(base, app))
}

// OpenResultCacheAt initializes a cache rooted at dir.
func OpenResultCacheAt(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ResultCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// MakeCacheKey combines a content hash with an options fingerprint.
func MakeCacheKey(contentHash [32]byte, fingerprint string) CacheKey {
	h := sha256.New()
	h.Write(contentHash[:])
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	var key CacheKey
	copy(key[:], h.Sum(nil))
	return key
}

func (c *ResultCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey+".mp")
}

// Put serializes and writes a result to the cache.
func (c *ResultCache) Put(key CacheKey, fingerprint string, res *balance.Result) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.Name()) //nolint:errcheck
		}
	}()

	payload := CachedResult{
		Schema:  resultCacheSchemaVersion,
		Options: fingerprint,
		Result:  *res,
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads a result from the cache. Entries written by another schema
// version or with other options count as misses.
func (c *ResultCache) Get(key CacheKey, fingerprint string) (balance.Result, bool, error) {
	if c == nil {
		return balance.Result{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return balance.Result{}, false, nil
		}
		return balance.Result{}, false, err
	}
	defer f.Close() //nolint:errcheck

	var payload CachedResult
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return balance.Result{}, false, err
	}
	if payload.Schema != resultCacheSchemaVersion || payload.Options != fingerprint {
		return balance.Result{}, false, nil
	}
	return payload.Result, true, nil
}

// DropAll invalidates the cache.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
