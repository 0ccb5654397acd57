// Package cache holds upstream GET bodies for a short TTL so that bursts of
// page loads do not each hit the third-party endpoints.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a size-bounded LRU of response bodies with a fixed TTL.
// Concurrent misses for the same key share a single fetch.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[string]*list.Element

	flight singleflight.Group
}

type item struct {
	key     string
	body    []byte
	expires time.Time
}

// New returns nil when ttl is not positive, which disables caching.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		ttl:   ttl,
		max:   maxEntries,
		now:   time.Now,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// Key identifies a GET to rawURL on the named upstream.
func Key(upstream, rawURL string) string {
	return upstream + " " + rawURL
}

// Get returns a live entry and marks it recently used.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	it := el.Value.(*item)
	if !c.now().Before(it.expires) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return it.body, true
}

// Put stores body under key, evicting the least recently used entry when full.
func (c *Cache) Put(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		it := el.Value.(*item)
		it.body, it.expires = body, expires
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.max {
		c.remove(c.order.Back())
	}
	c.items[key] = c.order.PushFront(&item{key: key, body: body, expires: expires})
}

// Fetch returns the cached body for key, or calls fetch and caches its
// result. hit reports whether the body came from the cache. Errors are
// never cached. On a nil Cache, fetch is simply called.
//
// A shared fetch outlives any single waiter: a caller whose ctx ends stops
// waiting with ctx.Err() while the others still receive the result.
func (c *Cache) Fetch(ctx context.Context, key string, fetch func() ([]byte, error)) (body []byte, hit bool, err error) {
	if c == nil {
		body, err = fetch()
		return body, false, err
	}
	if body, ok := c.Get(key); ok {
		return body, true, nil
	}
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		b, err := fetch()
		if err != nil {
			return nil, err
		}
		c.Put(key, b)
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]byte), false, nil
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// remove must be called with mu held.
func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*item).key)
}
