package offline

import (
	"context"
	"sync"
)

// Storage is a set of named caches.
type Storage interface {
	// Open returns the named cache, creating it when absent.
	Open(ctx context.Context, name string) (Cache, error)
	// Keys lists cache names in creation order.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes the named cache and its entries. It reports whether
	// the cache existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Cache stores responses keyed by request identity.
type Cache interface {
	Name() string
	// Put stores or replaces one entry.
	Put(ctx context.Context, e Entry) error
	// PutAll stores every entry or none of them.
	PutAll(ctx context.Context, entries []Entry) error
	// Match returns the entry for key; ok is false on a miss.
	Match(ctx context.Context, key Key) (e Entry, ok bool, err error)
	// Keys lists the stored keys in insertion order.
	Keys(ctx context.Context) ([]Key, error)
}

// MemoryStorage keeps caches in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	order  []string
	caches map[string]*memoryCache
}

// NewMemoryStorage returns an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[name]; ok {
		return c, nil
	}
	c := &memoryCache{name: name, entries: make(map[Key]Entry)}
	s.caches[name] = c
	s.order = append(s.order, name)
	return c, nil
}

func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caches[name]; !ok {
		return false, nil
	}
	delete(s.caches, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

type memoryCache struct {
	name    string
	mu      sync.RWMutex
	order   []Key
	entries map[Key]Entry
}

func (c *memoryCache) Name() string { return c.name }

func (c *memoryCache) Put(_ context.Context, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(e)
	return nil
}

func (c *memoryCache) PutAll(_ context.Context, entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.put(e)
	}
	return nil
}

func (c *memoryCache) put(e Entry) {
	if _, ok := c.entries[e.Key]; !ok {
		c.order = append(c.order, e.Key)
	}
	c.entries[e.Key] = e
}

func (c *memoryCache) Match(_ context.Context, key Key) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *memoryCache) Keys(_ context.Context) ([]Key, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Key, len(c.order))
	copy(out, c.order)
	return out, nil
}
