package category

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache holds categories by id. Only hits are cached so a category created
// by another process is seen on the next lookup.
type Cache struct {
	store *ristretto.Cache
	ttl   time.Duration
}

func NewCache(numCounters, maxCost int64, ttl time.Duration) (*Cache, error) {
	if numCounters <= 0 {
		numCounters = 10000
	}
	if maxCost <= 0 {
		maxCost = 1000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize category cache: %w", err)
	}
	return &Cache{store: store, ttl: ttl}, nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("category:%d", id)
}

func (c *Cache) Get(id int64) (*Category, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.store.Get(cacheKey(id))
	if !ok {
		return nil, false
	}
	cat, ok := value.(*Category)
	if !ok {
		return nil, false
	}
	copied := *cat
	return &copied, true
}

func (c *Cache) Set(cat *Category) {
	if c == nil || cat == nil {
		return
	}
	copied := *cat
	if c.ttl > 0 {
		c.store.SetWithTTL(cacheKey(cat.ID), &copied, 1, c.ttl)
		return
	}
	c.store.Set(cacheKey(cat.ID), &copied, 1)
}

func (c *Cache) Invalidate(id int64) {
	if c == nil {
		return
	}
	c.store.Del(cacheKey(id))
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	if c == nil {
		return
	}
	c.store.Wait()
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
