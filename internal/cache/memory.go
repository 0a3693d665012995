package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the in-process cache implementation.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{cache: gocache.New(defaultTTL, 10*time.Minute)}
}

// Get retrieves a cached payload.
func (m *Memory) Get(key string) ([]byte, bool) {
	if val, found := m.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a payload; ttl 0 uses the default.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	m.cache.Set(key, value, ttl)
	return nil
}

// Delete removes one entry.
func (m *Memory) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}

// Clear drops all entries.
func (m *Memory) Clear() error {
	m.cache.Flush()
	return nil
}
