// Package chart builds and compares astrological chart snapshots: the
// fixed natal chart captured once per profile and the short-lived moment
// chart recomputed from the current sky. Comparison yields harmony
// scores and the personalization boost the recommendation layer applies
// to its base scores.
package chart

import (
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/positions"
)

// Role tags a chart snapshot by its lifecycle.
type Role string

const (
	// RoleNatal marks the fixed snapshot computed once at profile
	// creation and never recomputed.
	RoleNatal Role = "natal"
	// RoleMoment marks the recomputed-per-query snapshot for the
	// current sky.
	RoleMoment Role = "moment"
)

// Chart is one snapshot of planetary positions and the properties
// derived from them. Alchemy always comes from the position-driven
// deriver; Constitution is the separate element-blended profile and
// never stands in for it.
type Chart struct {
	Role         Role                     `json:"role"`
	Positions    astro.PlanetaryPositions `json:"positions"`
	Elements     alchemy.ElementalVector  `json:"elements"`
	Alchemy      alchemy.AlchemicalCounts `json:"alchemy"`
	Constitution alchemy.Constitution     `json:"constitution"`
	CreatedAt    time.Time                `json:"createdAt"`

	// Stale carries the position feed's provenance: true when the
	// positions came from the cached or default fallback tiers.
	Stale bool           `json:"stale,omitempty"`
	Tier  positions.Tier `json:"tier,omitempty"`
}

// Builder derives charts from position sets using a fixed weight set and
// alchemy table.
type Builder struct {
	weights alchemy.PlanetWeights
	table   alchemy.AlchemyTable
}

// NewBuilder wires a chart builder. A nil table uses the default
// alchemy table; nil weights count every planet equally.
func NewBuilder(weights alchemy.PlanetWeights, table alchemy.AlchemyTable) *Builder {
	if table == nil {
		table = alchemy.DefaultAlchemyTable()
	}
	return &Builder{weights: weights, table: table}
}

// Build derives a chart of the given role from a position set. The
// positions are cloned so later feed updates cannot mutate the chart.
func (b *Builder) Build(role Role, pos astro.PlanetaryPositions) *Chart {
	elements := alchemy.ZodiacElemental(pos, b.weights)
	return &Chart{
		Role:         role,
		Positions:    pos.Clone(),
		Elements:     elements,
		Alchemy:      b.table.Derive(pos),
		Constitution: alchemy.DeriveConstitution(elements),
		CreatedAt:    time.Now().UTC(),
	}
}

// Natal builds the immutable birth snapshot for a profile.
func (b *Builder) Natal(pos astro.PlanetaryPositions) *Chart {
	return b.Build(RoleNatal, pos)
}
