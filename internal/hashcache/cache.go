// Package hashcache keeps perceptual hashes between runs so unchanged files
// are not decoded again.
package hashcache

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Entry is one cached hash, keyed by absolute path in the cache.
type Entry struct {
	LastModified int64  `json:"lastModified"` // milliseconds since epoch
	Hash         string `json:"hash"`
}

// Valid reports whether the entry can be reused for a file with the given
// modification time by a hasher producing hashes of hashLength.
func (e Entry) Valid(lastModified int64, hashLength int) bool {
	return e.LastModified == lastModified && len(e.Hash) == hashLength
}

// Hasher is the perceptual hash function the cache falls back to.
type Hasher interface {
	ComputeFile(path string) (string, error)
	Length() int
}

// Stats summarises cache usage during a run.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// Cache is safe for concurrent use by the hashing workers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	hits    int
	misses  int
	dirty   bool

	// flight makes the lookup, compute and store of one path a single unit
	flight singleflight.Group
	logger *slog.Logger
}

// New creates a cache seeded with previously persisted entries.
func New(entries map[string]Entry, logger *slog.Logger) *Cache {
	if entries == nil {
		entries = make(map[string]Entry)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{entries: entries, logger: logger}
}

// Load reads the persisted entries from store.
func Load(ctx context.Context, store Store, logger *slog.Logger) (*Cache, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading hash cache: %w", err)
	}
	return New(entries, logger), nil
}

// Save persists the entries to store. Nothing is written when no hash changed.
func (c *Cache) Save(ctx context.Context, store Store) error {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	snapshot := maps.Clone(c.entries)
	c.mu.Unlock()

	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("saving hash cache: %w", err)
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	c.logger.Debug("hash cache saved", "entries", len(snapshot))
	return nil
}

// Lookup returns a cached hash if it is still valid.
func (c *Cache) Lookup(path string, lastModified int64, hashLength int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[path]
	if !ok || !entry.Valid(lastModified, hashLength) {
		return "", false
	}
	return entry.Hash, true
}

// Put stores a freshly computed hash.
func (c *Cache) Put(path string, lastModified int64, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = Entry{LastModified: lastModified, Hash: hash}
	c.dirty = true
}

// ComputeOrReuse returns the cached hash for path when the file has not been
// modified since and the hash length still matches, otherwise it hashes the
// file and caches the result. Failures are not cached.
func (c *Cache) ComputeOrReuse(path string, hasher Hasher) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	lastModified := info.ModTime().UnixMilli()

	v, err, _ := c.flight.Do(path, func() (any, error) {
		if hash, ok := c.Lookup(path, lastModified, hasher.Length()); ok {
			c.count(true)
			c.logger.Debug("reusing cached hash", "file", info.Name(), "hash", hash)
			return hash, nil
		}

		hash, err := hasher.ComputeFile(path)
		if err != nil {
			return "", err
		}
		c.Put(path, lastModified, hash)
		c.count(false)
		c.logger.Debug("computed hash", "file", info.Name(), "hash", hash)
		return hash, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats returns the entry count and the hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// CountValid returns how many entries have the given hash length.
// Modification times are not checked.
func CountValid(entries map[string]Entry, hashLength int) int {
	valid := 0
	for _, e := range entries {
		if len(e.Hash) == hashLength {
			valid++
		}
	}
	return valid
}
