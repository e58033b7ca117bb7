package cache

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/rl1809/catalog-service/internal/port"
)

// MemoryCache is the default process-local cache store: a mutex-guarded
// map with no TTL, no eviction and no size bound. Staleness is handled
// entirely by explicit invalidation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[key]
	return ok, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, ok := c.entries[key]
	if !ok {
		return nil, port.ErrKeyNotFound
	}
	return bytes.Clone(val), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = bytes.Clone(val)
	return nil
}

func (c *MemoryCache) DeleteMatching(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if matchKey(pattern, key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// matchKey applies the pattern grammar: an exact key, or a prefix
// followed by '*'.
func matchKey(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return key == pattern
}
