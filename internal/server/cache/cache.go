// Package cache memoizes rendered API views keyed by canonical request.
// Entries expire after a TTL and the whole cache is flushed whenever the
// catalog reloads.
package cache

import (
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache with hit accounting.
type Cache struct {
	items   *gocache.Cache
	ttl     time.Duration
	hits    atomic.Uint64
	misses  atomic.Uint64
	flushes atomic.Uint64
}

// New returns a cache whose entries live for ttl. Expired entries are
// swept every cleanup interval.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{items: gocache.New(ttl, cleanup), ttl: ttl}
}

// Key joins parts with ":".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get returns the value for key and records a hit or a miss.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.items.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.items.SetDefault(key, value)
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.items.Delete(key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.flushes.Add(1)
	c.items.Flush()
}

// ItemCount returns the number of entries, expired ones included until swept.
func (c *Cache) ItemCount() int {
	return c.items.ItemCount()
}

// Remember returns the cached value for key, or computes, stores and
// returns it. When compute reports false the result is returned uncached.
func Remember[T any](c *Cache, key string, compute func() (T, bool)) T {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	v, keep := compute()
	if keep {
		c.Set(key, v)
	}
	return v
}

// Stats reports cache occupancy and effectiveness.
type Stats struct {
	ItemCount int     `json:"item_count"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRatio  float64 `json:"hit_ratio"`
	Flushes   uint64  `json:"flushes"`
	TTL       string  `json:"ttl"`
}

// GetStats returns the current statistics.
func (c *Cache) GetStats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return Stats{
		ItemCount: c.items.ItemCount(),
		Hits:      hits,
		Misses:    misses,
		HitRatio:  ratio,
		Flushes:   c.flushes.Load(),
		TTL:       c.ttl.String(),
	}
}
