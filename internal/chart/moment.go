package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/positions"
)

// DefaultMomentTTL is how long a moment chart stays servable. Planetary
// positions drift slowly against query rates, so five minutes loses
// nothing measurable.
const DefaultMomentTTL = 5 * time.Minute

// PositionSource resolves positions for a moment in time. Satisfied by
// *positions.Service.
type PositionSource interface {
	Get(ctx context.Context, at time.Time, loc *positions.Location) (*positions.Result, error)
}

// MomentService produces the current-sky chart, cached per location for
// a short TTL. Concurrent requests for the same bucket share one
// position fetch.
type MomentService struct {
	source  PositionSource
	builder *Builder
	results *cache.ResultCache
	ttl     time.Duration
	flight  singleflight.Group
}

// NewMomentService wires a moment service. results may be nil to
// disable caching; ttl zero or negative uses DefaultMomentTTL.
func NewMomentService(source PositionSource, builder *Builder, results *cache.ResultCache, ttl time.Duration) *MomentService {
	if builder == nil {
		builder = NewBuilder(nil, nil)
	}
	if ttl <= 0 {
		ttl = DefaultMomentTTL
	}
	return &MomentService{source: source, builder: builder, results: results, ttl: ttl}
}

// momentKey buckets lookups by location and TTL-aligned time so every
// query inside one bucket shares a cache entry.
func (s *MomentService) momentKey(at time.Time, loc *positions.Location) string {
	bucket := at.Truncate(s.ttl).Unix()
	if loc == nil {
		return fmt.Sprintf("geo@%d", bucket)
	}
	return fmt.Sprintf("%.2f,%.2f@%d", loc.Latitude, loc.Longitude, bucket)
}

// Moment returns the chart for the current sky at the given location.
// Fresh results are cached for the TTL; results built from fallback
// positions are served but not cached, so the next bucket retries the
// live tiers.
func (s *MomentService) Moment(ctx context.Context, loc *positions.Location) (*Chart, error) {
	key := s.momentKey(time.Now(), loc)

	if c, ok := s.cached(key); ok {
		return c, nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		if c, ok := s.cached(key); ok {
			return c, nil
		}

		start := time.Now()
		res, err := s.source.Get(ctx, time.Now(), loc)
		if err != nil {
			return nil, fmt.Errorf("moment chart: %w", err)
		}

		c := s.builder.Build(RoleMoment, res.Positions)
		c.Stale = res.Stale
		c.Tier = res.Tier
		metrics.ObserveCompute("moment", time.Since(start))

		if s.results != nil && !c.Stale {
			if payload, err := json.Marshal(c); err == nil {
				s.results.Put("moment", key, payload, s.ttl)
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Chart), nil
}

// cached returns a previously built chart for key, treating a corrupt
// payload as a miss.
func (s *MomentService) cached(key string) (*Chart, bool) {
	if s.results == nil {
		return nil, false
	}
	payload, ok := s.results.Get("moment", key, s.ttl)
	if !ok {
		return nil, false
	}
	var c Chart
	if err := json.Unmarshal(payload, &c); err != nil {
		s.results.Invalidate("moment", key)
		return nil, false
	}
	return &c, true
}
