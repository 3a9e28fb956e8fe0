package util

import "sync"

type (

	// NameCache remembers resolved names so repeat lookups within one run
	// skip the network
	NameCache struct {
		lock  *sync.Mutex
		cache map[string]string
	}
)

// NewNameCache creates a new, empty name cache
func NewNameCache() NameCache {
	c := make(map[string]string)
	return NameCache{
		lock:  new(sync.Mutex),
		cache: c,
	}
}

// Lookup returns the cached name for key and whether it was present
func (c NameCache) Lookup(key string) (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	name, ok := c.cache[key]
	return name, ok
}

// Store records the name for key, replacing any previous value
func (c NameCache) Store(key, name string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache[key] = name
}

// Len returns the number of cached names
func (c NameCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.cache)
}
