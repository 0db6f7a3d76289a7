package client

import "sync"

const (
	keyProducts   = "products"
	keyMyProducts = "products:my"
)

func keyProduct(id string) string {
	return "product:" + id
}

// collectionCache keeps decoded collections keyed by resource. There is no
// TTL: entries live until a mutation invalidates them, matching the
// invalidate-on-write contract of the API. Reads racing a mutation may still
// observe the pre-mutation value.
type collectionCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
}

func newCollectionCache() *collectionCache {
	return &collectionCache{entries: map[string]interface{}{}}
}

func (c *collectionCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *collectionCache) put(key string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *collectionCache) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}
