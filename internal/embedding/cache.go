package embedding

import (
	"context"
	"sync"
)

// Cache memoizes vectors per text in front of another Embedder.
type Cache struct {
	next Embedder

	mu     sync.RWMutex
	items  map[string]Vector
	hits   int
	misses int
}

// NewCache wraps next with an unbounded in-memory cache.
func NewCache(next Embedder) *Cache {
	return &Cache{
		next:  next,
		items: make(map[string]Vector),
	}
}

func (c *Cache) Encode(ctx context.Context, text string) (Vector, error) {
	c.mu.RLock()
	vec, ok := c.items[text]
	c.mu.RUnlock()

	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return vec, nil
	}

	vec, err := c.next.Encode(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	c.items[text] = vec
	c.mu.Unlock()

	return vec, nil
}

// Size reports how many texts are cached.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// HitRate reports the share of Encode calls answered from the cache.
func (c *Cache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.hits+c.misses == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.hits+c.misses)
}
