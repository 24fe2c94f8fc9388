package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ParseCache is a run-scoped content-hash cache of parsed files. It is passed
// explicitly into the pipeline rather than held in package state, so repeated
// runs in one process never leak results between repositories. A persisted
// copy lets incremental runs skip re-parsing unchanged files.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	hits    int
	misses  int
}

// CacheEntry pairs a file's content hash with its parsed form.
type CacheEntry struct {
	Hash string      `json:"hash"`
	File *SourceFile `json:"file"`
}

func NewParseCache() *ParseCache {
	return &ParseCache{entries: make(map[string]CacheEntry)}
}

// HashContent returns the cache key hash for file content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached parse for path if the content hash still matches.
func (c *ParseCache) Get(path, hash string) (*SourceFile, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.Hash == hash {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.File, true
	}
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

func (c *ParseCache) Put(path, hash string, file *SourceFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = CacheEntry{Hash: hash, File: file}
}

// Snapshot returns a copy of the cache contents for persistence.
func (c *ParseCache) Snapshot() map[string]CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]CacheEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Restore seeds the cache from a persisted snapshot.
func (c *ParseCache) Restore(entries map[string]CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.entries[k] = v
	}
}

// Stats returns hit/miss counters for the run summary.
func (c *ParseCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
