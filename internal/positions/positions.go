// Package positions resolves planetary positions for a moment in time.
// Lookups walk a fallback chain: primary astronomical service, secondary
// public service, last-known cached positions, and finally a hardcoded
// reference chart. Every result carries the tier that served it so
// callers can tell fresh data from stale.
package positions

import (
	"context"
	"errors"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// Tier identifies which fallback stage served a lookup.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierCached    Tier = "cached"
	TierDefault   Tier = "default"
)

// ErrUnavailable is returned only when every tier, including the default
// chart, has been exhausted or disabled. It is the single position error
// callers are expected to surface.
var ErrUnavailable = errors.New("positions: all sources unavailable")

// Location is an optional observer location for topocentric corrections.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is a resolved position set plus its provenance. Stale marks
// results served from the cached or default tiers.
type Result struct {
	Positions astro.PlanetaryPositions `json:"positions"`
	Tier      Tier                     `json:"tier"`
	FetchedAt time.Time                `json:"fetchedAt"`
	Stale     bool                     `json:"stale"`
}

// Provider fetches positions from one upstream source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, at time.Time, loc *Location) (astro.PlanetaryPositions, error)
}
