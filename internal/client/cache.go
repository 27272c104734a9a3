package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// QueryCache memoizes query results by key and collapses concurrent
// identical requests into a single fetch. Entries carry tags so related
// resources can be invalidated together.
type QueryCache struct {
	data *gocache.Cache

	mu       sync.Mutex
	inflight map[string]*inflightCall
	tagKeys  map[string]map[string]struct{} // tag -> set of keys
}

type inflightCall struct {
	done chan struct{}
	val  json.RawMessage
	err  error
}

// NewQueryCache creates a cache whose entries live for ttl.
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		data:     gocache.New(ttl, 2*ttl),
		inflight: make(map[string]*inflightCall),
		tagKeys:  make(map[string]map[string]struct{}),
	}
}

// GetOrFetch returns the cached value for key, joining an in-flight fetch
// for the same key if one exists, and otherwise running fetch. A failed
// fetch is not cached.
func (c *QueryCache) GetOrFetch(ctx context.Context, key string, tags []string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if v, ok := c.data.Get(key); ok {
		return v.(json.RawMessage), nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.val, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.val, call.err = fetch(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	if call.err == nil {
		c.data.SetDefault(key, call.val)
		for _, tag := range tags {
			if c.tagKeys[tag] == nil {
				c.tagKeys[tag] = make(map[string]struct{})
			}
			c.tagKeys[tag][key] = struct{}{}
		}
	}
	c.mu.Unlock()

	close(call.done)
	return call.val, call.err
}

// Invalidate drops every entry registered under any of the tags.
func (c *QueryCache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		for key := range c.tagKeys[tag] {
			c.data.Delete(key)
		}
		delete(c.tagKeys, tag)
	}
}
