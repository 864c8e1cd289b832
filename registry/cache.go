package registry

import (
	"sync"
	"time"
)

// Cache holds the process-wide current registry. It starts empty and
// is wholesale-replaced by every successful load; old flags are
// discarded, never unioned with the new ones.
//
// The registry value behind the cache is an immutable snapshot swapped
// atomically under a lock, so concurrent tool invocations read a
// consistent registry even while a load replaces it.
type Cache struct {
	mu       sync.RWMutex
	reg      *Registry
	source   string
	loadedAt time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{reg: New()}
}

// Snapshot returns the current registry. Callers must not mutate it.
func (c *Cache) Snapshot() *Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg
}

// Replace installs a freshly parsed registry, superseding all
// previously known flags and patterns.
func (c *Cache) Replace(reg *Registry, source string) {
	if reg == nil {
		reg = New()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg = reg
	c.source = source
	c.loadedAt = time.Now()
}

// Lookup returns the named flag from the current registry.
func (c *Cache) Lookup(name string) (Flag, bool) {
	return c.Snapshot().Lookup(name)
}

// Source returns the path the current registry was loaded from, or ""
// when nothing has been loaded.
func (c *Cache) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// LoadedAt returns when the current registry was installed.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Empty reports whether the cache holds no flags and no patterns.
func (c *Cache) Empty() bool {
	return c.Snapshot().Empty()
}
