package handlers

import (
	"sync"
	"time"

	"energyhub/internal/build"
)

// CacheEntry is a built model kept for LP download and solution upload.
type CacheEntry struct {
	Hub       *build.Hub
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ModelCache keeps built models in memory until their TTL passes. A nil
// cache stores nothing.
type ModelCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

const cleanupInterval = 5 * time.Minute

// NewModelCache starts a cache whose entries live for ttl. Call Close to stop
// the cleanup goroutine.
func NewModelCache(ttl time.Duration) *ModelCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &ModelCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanup(cleanupInterval)
	return c
}

// Get retrieves a model if available and not expired
func (c *ModelCache) Get(id string) (*CacheEntry, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[id]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Set stores a model under id
func (c *ModelCache) Set(id string, hub *build.Hub) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.store[id] = &CacheEntry{
		Hub:       hub,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
}

func (c *ModelCache) Delete(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, id)
}

func (c *ModelCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *ModelCache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.done) })
}

// cleanup periodically removes expired entries
func (c *ModelCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *ModelCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
		}
	}
}
