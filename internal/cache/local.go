package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

// LocalCache is an in-memory Cache with TTL support. It backs tests and
// cacheless development setups; production uses RedisCache.
type LocalCache struct {
	mu    sync.RWMutex
	items map[string]localItem
}

type localItem struct {
	data      []byte
	expiresAt time.Time
}

func NewLocalCache() *LocalCache {
	return &LocalCache{items: make(map[string]localItem)}
}

func (c *LocalCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *LocalCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = localItem{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) DeletePattern(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var deleted int
	for key := range c.items {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return deleted, err
		}
		if ok {
			delete(c.items, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of entries, expired or not. Test helper.
func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
