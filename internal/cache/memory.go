package cache

import (
	"context"
	"sync"
	"time"

	"hospitalhub/internal/recommender"
)

type entry struct {
	data      recommender.Response
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache. Expired entries are removed
// lazily when read; there is no other eviction.
type MemoryCache struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache whose entries live for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live entry for key
func (c *MemoryCache) Get(_ context.Context, key string) (recommender.Response, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return recommender.Response{}, false, nil
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// another writer may have refreshed it meanwhile
		if cur, still := c.entries[key]; still && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return recommender.Response{}, false, nil
	}

	return e.data, true, nil
}

// Set stores resp under key for the cache TTL
func (c *MemoryCache) Set(_ context.Context, key string, resp recommender.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		data:      resp,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet read
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
