package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache is the in-process cache used when Redis is disabled.
// Values are stored JSON encoded so reads decode into fresh copies.
type MemoryCache struct {
	mainCache *ristretto.Cache
}

func NewMemoryCache() (*MemoryCache, error) {
	mainCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,     // number of keys to track frequency of (1M)
		MaxCost:     1 << 26, // maximum cost of cache (~64M)
		BufferItems: 64,      // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %s", err)
	}
	return &MemoryCache{mainCache: mainCache}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.mainCache.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cache entry %s has type %T", key, v)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set waits for the write buffer to drain, so the next Get sees the value.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !c.mainCache.SetWithTTL(key, b, int64(len(b)), ttl) {
		return fmt.Errorf("cache entry %s dropped", key)
	}
	c.mainCache.Wait()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.mainCache.Del(k)
	}
	return nil
}

// Close stops the cache's background goroutines.
func (c *MemoryCache) Close() {
	c.mainCache.Close()
}
