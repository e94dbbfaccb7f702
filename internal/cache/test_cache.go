package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

var _ Cache = (*TestCache)(nil)

// TestCache is a map backed Cache for tests. Entries never expire.
type TestCache struct {
	entries map[string][]byte
	mutex   sync.Mutex
}

func NewTestCache() *TestCache {
	return &TestCache{
		entries: make(map[string][]byte),
	}
}

func (tc *TestCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	tc.mutex.Lock()
	b, ok := tc.entries[key]
	tc.mutex.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (tc *TestCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.entries[key] = b
	return nil
}

func (tc *TestCache) Invalidate(_ context.Context, keys ...string) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	for _, k := range keys {
		delete(tc.entries, k)
	}
	return nil
}

// Has reports whether key holds an entry.
func (tc *TestCache) Has(key string) bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	_, ok := tc.entries[key]
	return ok
}
