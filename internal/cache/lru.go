package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache is a cost-bounded cache backed by ristretto. Cost is the size of
// the stored value in bytes.
type LRUCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// NewLRU creates a cache holding at most maxSizeMB megabytes across roughly
// maxEntries keys.
func NewLRU(maxSizeMB int64, maxEntries int64, defaultTTL time.Duration) (*LRUCache, error) {
	if maxSizeMB <= 0 || maxEntries <= 0 {
		return nil, fmt.Errorf("cache limits must be positive: size=%dMB entries=%d", maxSizeMB, maxEntries)
	}
	// ristretto recommends ~10 counters per expected entry
	numCounters := maxEntries * 10
	if numCounters < 1000 {
		numCounters = 1000
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxSizeMB << 20,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &LRUCache{cache: c, defaultTTL: defaultTTL}, nil
}

func (c *LRUCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	e, ok := val.(*entry)
	if !ok || time.Now().After(e.expiresAt) {
		c.cache.Del(key)
		return nil, false
	}
	return e.data, true
}

// Set stores value and waits for ristretto's buffers to apply it, so an
// immediate Get observes the write when the value was admitted.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.cache.Set(key, &entry{data: value, expiresAt: time.Now().Add(ttl)}, int64(len(value)))
	c.cache.Wait()
}

func (c *LRUCache) Delete(key string) {
	c.cache.Del(key)
}

func (c *LRUCache) Clear() {
	c.cache.Clear()
}

func (c *LRUCache) Stats() Stats {
	m := c.cache.Metrics
	return Stats{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		KeysAdded: m.KeysAdded(),
		Evictions: m.KeysEvicted(),
		Size:      int64(m.CostAdded() - m.CostEvicted()),
		Items:     int64(m.KeysAdded() - m.KeysEvicted()),
	}
}

// Close releases ristretto's background goroutines.
func (c *LRUCache) Close() {
	c.cache.Close()
}
