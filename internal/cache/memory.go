package cache

import (
	"context"
	"sync"
	"time"
)

const memoryMaxEntries = 4096

type memoryEntry struct {
	productID string
	expiresAt time.Time
}

// MemoryCache is a TTL map cache for single-process deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

var _ Cache = (*MemoryCache)(nil)

// NewMemory creates an in-process cache with the given entry TTL.
func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Get returns the cached product id for a mention, if present and fresh.
func (c *MemoryCache) Get(ctx context.Context, mention string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[mention]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, mention)
		c.mu.Unlock()
		return "", false
	}
	return e.productID, true
}

// Set records a resolved mention.
func (c *MemoryCache) Set(ctx context.Context, mention, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= memoryMaxEntries {
		c.pruneExpiredLocked()
		if len(c.entries) >= memoryMaxEntries {
			return
		}
	}
	c.entries[mention] = memoryEntry{
		productID: productID,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *MemoryCache) pruneExpiredLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Close is a no-op for the in-process cache.
func (c *MemoryCache) Close() error {
	return nil
}
