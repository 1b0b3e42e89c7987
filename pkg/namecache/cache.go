package namecache

import (
	"sync"
	"time"
)

// Clock supplies the current time to the cache.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Loader fetches display names for identifiers missing from the cache.
// Identifiers it does not know are simply left out of the result.
type Loader interface {
	LoadDisplayNames(identifiers []string) (map[string]string, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(identifiers []string) (map[string]string, error)

func (f LoaderFunc) LoadDisplayNames(identifiers []string) (map[string]string, error) {
	return f(identifiers)
}

type entry struct {
	name      string
	expiresAt time.Time
}

// Cache maps user identifiers to display names for a limited time.
type Cache struct {
	mu      sync.Mutex
	loader  Loader
	clock   Clock
	ttl     time.Duration
	entries map[string]entry
}

func New(loader Loader, clock Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{
		loader:  loader,
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Resolve returns a display name for every identifier. Cached names are
// served until they expire; the rest are loaded in one call. An identifier
// the loader cannot resolve maps to itself and is not cached.
func (c *Cache) Resolve(identifiers []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	names := make(map[string]string, len(identifiers))
	var missing []string
	for _, id := range identifiers {
		if _, done := names[id]; done {
			continue
		}
		if e, ok := c.entries[id]; ok && now.Before(e.expiresAt) {
			names[id] = e.name
			continue
		}
		names[id] = id
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return names, nil
	}

	loaded, err := c.loader.LoadDisplayNames(missing)
	if err != nil {
		return names, err
	}
	for _, id := range missing {
		name, ok := loaded[id]
		if !ok || name == "" {
			continue
		}
		names[id] = name
		c.entries[id] = entry{name: name, expiresAt: now.Add(c.ttl)}
	}
	return names, nil
}

// Invalidate drops one identifier, e.g. after a user is renamed.
func (c *Cache) Invalidate(identifier string) {
	c.mu.Lock()
	delete(c.entries, identifier)
	c.mu.Unlock()
}
