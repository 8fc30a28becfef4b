// internal/domain/product/cache.go
package product

import (
	"sync"
	"time"
)

// cacheEntry pairs a product snapshot with its storage time.
type cacheEntry struct {
	product  *Product
	storedAt time.Time
}

// Cache is an in-process product cache keyed by product ID. Entries are
// served only while younger than the TTL; expired entries read as misses.
// The map is unbounded and lives for the process lifetime.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uint]cacheEntry
	now     func() time.Time
}

// NewCache creates a product cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[uint]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached product, or nil when absent or expired.
func (c *Cache) Get(productID uint) *Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[productID]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil
	}
	return entry.product
}

// Set stores a product snapshot stamped with the current time.
func (c *Cache) Set(prod *Product) {
	if prod == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[prod.ID] = cacheEntry{product: prod, storedAt: c.now()}
}

// Invalidate drops a single entry, used after admin updates.
func (c *Cache) Invalidate(productID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint]cacheEntry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
