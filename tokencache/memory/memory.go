// Package memory provides an in-process implementation of tokencache.Cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ggoodman/payments-go/tokencache"
)

// Cache implements tokencache.Cache with a mutex-guarded map. Expired items
// are dropped lazily on access.
type Cache struct {
	mu    sync.Mutex
	items map[string]*tokencache.Item
	now   func() time.Time
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{items: make(map[string]*tokencache.Item), now: time.Now}
}

func (c *Cache) Get(ctx context.Context, key string) (*tokencache.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	if item.IsExpired(c.now()) {
		delete(c.items, key)
		return nil, nil
	}
	return item, nil
}

func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = tokencache.NewItem(data, c.now(), ttl)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *Cache) Close() error { return nil }

var _ tokencache.Cache = (*Cache)(nil)
