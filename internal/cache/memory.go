// SPDX-License-Identifier: MIT
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	videoID    string
	expiration time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// memoryCache is the default backend: a mutex-guarded map with a
// background janitor that sweeps expired entries.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	lastCleanup atomic.Int64

	janitorStop chan struct{}
	closeOnce   sync.Once
}

// NewMemory returns an in-process cache. cleanupInterval bounds how long
// an expired entry can linger before the janitor reclaims it; reads never
// return expired entries regardless.
func NewMemory(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries:     make(map[string]memoryEntry),
		janitorStop: make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	go c.janitor(cleanupInterval)
	return c
}

func (c *memoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return e.videoID, true
}

func (c *memoryCache) Set(key, videoID string, ttl time.Duration) {
	e := memoryEntry{videoID: videoID}
	if ttl > 0 {
		e.expiration = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	entries := int64(len(c.entries))
	c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     entries,
		Evictions:   c.evictions.Load(),
		LastCleanup: c.lastCleanup.Load(),
	}
}

func (c *memoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.janitorStop) })
	return nil
}

func (c *memoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-c.janitorStop:
			return
		}
	}
}

func (c *memoryCache) sweep(now time.Time) {
	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
	c.mu.Unlock()
	c.lastCleanup.Store(now.Unix())
}
