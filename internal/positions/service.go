package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
)

// Config holds the fallback chain settings.
type Config struct {
	PrimaryURL       string
	SecondaryURL     string
	FetchTimeout     time.Duration
	BreakerThreshold int
	BreakerOpenFor   time.Duration
	RatePerMinute    int
	LastKnownTTL     time.Duration
	DisableDefault   bool
}

// Service walks the fallback chain for each lookup. Remote tiers sit
// behind per-provider circuit breakers and a shared outbound rate limit;
// the cached tier replays the last successful fetch; the default tier
// serves the hardcoded reference chart.
type Service struct {
	providers      []Provider
	breakers       map[string]*breaker
	limiter        *rate.Limiter
	results        *cache.ResultCache
	lastKnownTTL   time.Duration
	fetchTimeout   time.Duration
	disableDefault bool

	mu        sync.Mutex
	lastKnown astro.PlanetaryPositions
	lastAt    time.Time
}

// lastKnownEntry is the shared-cache payload for the cached tier.
type lastKnownEntry struct {
	Positions astro.PlanetaryPositions `json:"positions"`
	FetchedAt time.Time                `json:"fetchedAt"`
}

// NewService builds the chain from config. results may be nil, which
// limits the cached tier to process lifetime.
func NewService(cfg Config, results *cache.ResultCache) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.LastKnownTTL <= 0 {
		cfg.LastKnownTTL = 7 * 24 * time.Hour
	}

	s := &Service{
		breakers:       make(map[string]*breaker),
		limiter:        rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute),
		results:        results,
		lastKnownTTL:   cfg.LastKnownTTL,
		fetchTimeout:   cfg.FetchTimeout,
		disableDefault: cfg.DisableDefault,
	}

	if c := NewAPIClient(string(TierPrimary), cfg.PrimaryURL, cfg.FetchTimeout); c != nil {
		s.addProvider(c, cfg)
	}
	if c := NewAPIClient(string(TierSecondary), cfg.SecondaryURL, cfg.FetchTimeout); c != nil {
		s.addProvider(c, cfg)
	}

	return s
}

func (s *Service) addProvider(p Provider, cfg Config) {
	s.providers = append(s.providers, p)
	s.breakers[p.Name()] = newBreaker(p.Name(), cfg.BreakerThreshold, cfg.BreakerOpenFor)
}

func locKey(loc *Location) string {
	if loc == nil {
		return "default"
	}
	return fmt.Sprintf("%.2f,%.2f", loc.Latitude, loc.Longitude)
}

// Current resolves positions for the present moment.
func (s *Service) Current(ctx context.Context, loc *Location) (*Result, error) {
	return s.Get(ctx, time.Now(), loc)
}

// Get resolves positions for a moment, walking the chain until a tier
// answers. Only an exhausted chain returns an error.
func (s *Service) Get(ctx context.Context, at time.Time, loc *Location) (*Result, error) {
	for _, p := range s.providers {
		br := s.breakers[p.Name()]
		if !br.Allow() {
			continue
		}
		if !s.limiter.Allow() {
			slog.Debug("position fetch rate limited", "provider", p.Name())
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		got, err := p.Fetch(fetchCtx, at, loc)
		cancel()
		if err != nil {
			br.Failure()
			metrics.RecordPositionFetch(p.Name(), "error")
			slog.Warn("position fetch failed", "provider", p.Name(), "error", err)
			continue
		}

		br.Success()
		metrics.RecordPositionFetch(p.Name(), "ok")
		now := time.Now()
		s.storeLastKnown(got, now, loc)
		return &Result{Positions: got, Tier: Tier(p.Name()), FetchedAt: now}, nil
	}

	if entry, ok := s.loadLastKnown(loc); ok {
		metrics.RecordPositionFetch(string(TierCached), "ok")
		slog.Info("serving last-known positions", "fetchedAt", entry.FetchedAt)
		return &Result{
			Positions: entry.Positions,
			Tier:      TierCached,
			FetchedAt: entry.FetchedAt,
			Stale:     true,
		}, nil
	}

	if !s.disableDefault {
		metrics.RecordPositionFetch(string(TierDefault), "ok")
		slog.Warn("serving hardcoded default chart")
		return &Result{
			Positions: DefaultChart(),
			Tier:      TierDefault,
			FetchedAt: defaultChartDate,
			Stale:     true,
		}, nil
	}

	return nil, ErrUnavailable
}

func (s *Service) storeLastKnown(p astro.PlanetaryPositions, at time.Time, loc *Location) {
	s.mu.Lock()
	s.lastKnown = p.Clone()
	s.lastAt = at
	s.mu.Unlock()

	if s.results == nil {
		return
	}
	payload, err := json.Marshal(lastKnownEntry{Positions: p, FetchedAt: at})
	if err != nil {
		return
	}
	s.results.Put("positions", locKey(loc), payload, s.lastKnownTTL)
}

func (s *Service) loadLastKnown(loc *Location) (lastKnownEntry, bool) {
	s.mu.Lock()
	if s.lastKnown != nil {
		entry := lastKnownEntry{Positions: s.lastKnown.Clone(), FetchedAt: s.lastAt}
		s.mu.Unlock()
		return entry, true
	}
	s.mu.Unlock()

	if s.results == nil {
		return lastKnownEntry{}, false
	}
	payload, ok := s.results.Get("positions", locKey(loc), s.lastKnownTTL)
	if !ok {
		return lastKnownEntry{}, false
	}
	var entry lastKnownEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return lastKnownEntry{}, false
	}
	if err := entry.Positions.Validate(); err != nil {
		return lastKnownEntry{}, false
	}
	return entry, true
}
