package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the serialized value for a cache key.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// ResultCache layers the hot tier over the shared tier and coalesces
// concurrent computations per key. The shared tier is optional; a nil
// shared cache leaves the hot tier on its own.
type ResultCache struct {
	hot    *HotCache
	shared *SharedCache
	flight singleflight.Group

	computes atomic.Int64
}

// New builds a ResultCache over the given tiers.
func New(hot *HotCache, shared *SharedCache) *ResultCache {
	return &ResultCache{hot: hot, shared: shared}
}

// Key composes the canonical cache key for a calculation type and identity.
func Key(calcType, id string) string {
	return calcType + ":" + id
}

// Get checks both tiers without computing. A shared-tier hit is promoted
// into the hot tier.
func (rc *ResultCache) Get(calcType, id string, ttl time.Duration) ([]byte, bool) {
	key := Key(calcType, id)
	if payload, ok := rc.hot.Get(key); ok {
		return payload, true
	}
	if rc.shared == nil {
		return nil, false
	}
	payload, ok := rc.shared.Get(key)
	if !ok {
		return nil, false
	}
	rc.hot.Put(key, payload, time.Now().Add(ttl))
	return payload, true
}

// Put writes a value through both tiers.
func (rc *ResultCache) Put(calcType, id string, payload []byte, ttl time.Duration) {
	key := Key(calcType, id)
	expiresAt := time.Now().Add(ttl)
	rc.hot.Put(key, payload, expiresAt)
	if rc.shared != nil {
		if err := rc.shared.Put(key, calcType, payload, expiresAt); err != nil {
			slog.Warn("shared cache write failed", "key", key, "error", err)
		}
	}
}

// GetOrCompute returns the cached value for (calcType, id), computing and
// storing it on miss. Concurrent callers for the same key share one
// computation. Compute errors are returned to every waiter and nothing is
// cached.
func (rc *ResultCache) GetOrCompute(ctx context.Context, calcType, id string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if payload, ok := rc.Get(calcType, id, ttl); ok {
		return payload, nil
	}

	key := Key(calcType, id)
	payload, err, _ := rc.flight.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we waited.
		if payload, ok := rc.Get(calcType, id, ttl); ok {
			return payload, nil
		}

		payload, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		rc.computes.Add(1)
		rc.Put(calcType, id, payload, ttl)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}

// Invalidate drops one entry from both tiers.
func (rc *ResultCache) Invalidate(calcType, id string) {
	key := Key(calcType, id)
	rc.hot.Delete(key)
	if rc.shared != nil {
		if err := rc.shared.Delete(key); err != nil {
			slog.Warn("shared cache delete failed", "key", key, "error", err)
		}
	}
}

// InvalidateType drops every shared-tier entry of one calculation type.
// Hot-tier entries of that type age out via their own expiry.
func (rc *ResultCache) InvalidateType(calcType string) {
	if rc.shared == nil {
		return
	}
	n, err := rc.shared.DeleteType(calcType)
	if err != nil {
		slog.Warn("shared cache type invalidation failed", "calcType", calcType, "error", err)
		return
	}
	slog.Info("cache invalidated", "calcType", calcType, "entries", n)
}

// Stats reports cumulative counters across both tiers.
type Stats struct {
	HotHits      int64 `json:"hotHits"`
	HotMisses    int64 `json:"hotMisses"`
	HotEvictions int64 `json:"hotEvictions"`
	Computes     int64 `json:"computes"`
	HotEntries   int   `json:"hotEntries"`
	SharedRows   int   `json:"sharedRows"`
}

// Stats returns a point-in-time counter snapshot.
func (rc *ResultCache) Stats() Stats {
	hits, misses, evictions := rc.hot.Stats()
	s := Stats{
		HotHits:      hits,
		HotMisses:    misses,
		HotEvictions: evictions,
		Computes:     rc.computes.Load(),
		HotEntries:   rc.hot.Len(),
	}
	if rc.shared != nil {
		if rows, err := rc.shared.Len(); err == nil {
			s.SharedRows = rows
		}
	}
	return s
}
