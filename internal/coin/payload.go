package coin

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ScanPayload holds the two captured coin faces between the upload step and
// the estimate step
type ScanPayload struct {
	Front []byte
	Back  []byte
}

// PayloadCache is a bounded, explicitly owned cache for staged scan payloads
// keyed by a generated id. Coin photos are large, so the cache evicts the
// least recently staged scan once full.
type PayloadCache struct {
	cache *lru.Cache[string, ScanPayload]
	idGen IDGenerator
}

// NewPayloadCache creates a PayloadCache holding at most size payloads
func NewPayloadCache(size int) (*PayloadCache, error) {
	cache, err := lru.New[string, ScanPayload](size)
	if err != nil {
		return nil, fmt.Errorf("creating payload cache: %w", err)
	}
	return &PayloadCache{
		cache: cache,
		idGen: &defaultIDGenerator{},
	}, nil
}

// NewPayloadCacheWithIDGenerator creates a PayloadCache with a custom id
// generator for testing
func NewPayloadCacheWithIDGenerator(size int, idGen IDGenerator) (*PayloadCache, error) {
	c, err := NewPayloadCache(size)
	if err != nil {
		return nil, err
	}
	c.idGen = idGen
	return c, nil
}

// Put stages a payload and returns its id
func (c *PayloadCache) Put(payload ScanPayload) string {
	id := c.idGen.Generate()
	c.cache.Add(id, payload)
	return id
}

// Get retrieves a staged payload by id
func (c *PayloadCache) Get(id string) (ScanPayload, bool) {
	return c.cache.Get(id)
}

// Clear removes a staged payload once its scan flow has resolved
func (c *PayloadCache) Clear(id string) {
	c.cache.Remove(id)
}

// Len returns the number of staged payloads
func (c *PayloadCache) Len() int {
	return c.cache.Len()
}
