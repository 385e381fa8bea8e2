// Package cache provides the two-tier result cache used by the
// computation pipeline and the chart comparison service: a hot
// in-process LRU tier backed by a shared SQLite tier, with single-flight
// coalescing of concurrent computations for the same key.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
)

// HotCache is the in-process tier: an LRU map of serialized results with
// per-entry expiry checked lazily on read.
type HotCache struct {
	mu         sync.RWMutex
	entries    map[string]*hotEntry
	lru        *list.List
	maxEntries int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type hotEntry struct {
	key       string
	payload   []byte
	expiresAt time.Time
	elem      *list.Element
}

// NewHotCache creates a hot tier holding at most maxEntries values.
func NewHotCache(maxEntries int) *HotCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &HotCache{
		entries:    make(map[string]*hotEntry),
		lru:        list.New(),
		maxEntries: maxEntries,
	}
}

// Get returns the payload for key if present and unexpired.
func (c *HotCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		metrics.RecordCacheOp("hot", "miss")
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.Delete(key)
		c.misses.Add(1)
		metrics.RecordCacheOp("hot", "expired")
		return nil, false
	}

	c.mu.Lock()
	c.lru.MoveToFront(entry.elem)
	c.mu.Unlock()

	c.hits.Add(1)
	metrics.RecordCacheOp("hot", "hit")
	return entry.payload, true
}

// Put stores payload under key until expiresAt, evicting the least
// recently used entry when the cap is exceeded.
func (c *HotCache) Put(key string, payload []byte, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.payload = payload
		existing.expiresAt = expiresAt
		c.lru.MoveToFront(existing.elem)
		return
	}

	entry := &hotEntry{key: key, payload: payload, expiresAt: expiresAt}
	entry.elem = c.lru.PushFront(entry)
	c.entries[key] = entry

	for len(c.entries) > c.maxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(*hotEntry)
		c.lru.Remove(oldest)
		delete(c.entries, victim.key)
		c.evictions.Add(1)
		metrics.RecordCacheEviction("hot")
	}
}

// Delete removes key if present.
func (c *HotCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		c.lru.Remove(entry.elem)
		delete(c.entries, key)
	}
}

// Len returns the current entry count.
func (c *HotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cumulative hit, miss and eviction counts.
func (c *HotCache) Stats() (hits, misses, evictions int64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}
