package graphql

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of responses an InMemoryCache keeps when
// created with a non-positive size.
const DefaultCacheSize = 128

// InMemoryCache holds the raw "data" member of recent responses, keyed by
// operation name and variables, and notifies watchers when an entry is
// written.  It is safe for concurrent use.
type InMemoryCache struct {
	entries  *lru.Cache
	watchers *subscriptionMap[struct{}]
}

func NewInMemoryCache(size int) (*InMemoryCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("graphql: create cache: %w", err)
	}
	return &InMemoryCache{
		entries:  entries,
		watchers: newSubscriptionMap[struct{}](),
	}, nil
}

func (c *InMemoryCache) Get(key string) (json.RawMessage, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.(json.RawMessage), true
}

// Put stores data under key and wakes the key's watchers.
func (c *InMemoryCache) Put(key string, data json.RawMessage) {
	stored := make(json.RawMessage, len(data))
	copy(stored, data)
	c.entries.Add(key, stored)
	c.watchers.Publish(key, struct{}{})
}

func (c *InMemoryCache) Evict(key string) {
	c.entries.Remove(key)
}

// Reset drops every entry.  Watchers stay registered.
func (c *InMemoryCache) Reset() {
	c.entries.Purge()
}

func (c *InMemoryCache) Len() int {
	return c.entries.Len()
}

// Watch returns a channel that receives a value each time key is written.
// Writes that arrive faster than the reader coalesce.
func (c *InMemoryCache) Watch(key string) (watchID string, changes <-chan struct{}) {
	return c.watchers.Create(key)
}

// Unwatch closes the watch channel returned by Watch.
func (c *InMemoryCache) Unwatch(watchID string) error {
	return c.watchers.Unsubscribe(watchID)
}

// cacheKey identifies a request by operation name, a short hash of the
// query text and the canonical JSON of its variables.
func cacheKey(opName, query string, variables interface{}) (string, error) {
	vars, err := canonicalJSON(variables)
	if err != nil {
		return "", fmt.Errorf("graphql: cache key: %w", err)
	}
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%x:%s", opName, sum[:6], vars), nil
}

// canonicalJSON re-encodes v through interface{} so that map keys come out
// sorted and struct and map variables with equal content produce equal keys.
func canonicalJSON(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
