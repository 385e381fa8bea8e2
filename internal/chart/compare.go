package chart

import (
	"math"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// Comparison weight and boost defaults. The harmony split is a tuned
// constant, not a derived optimum; adjust via ComparisonConfig.
const (
	DefaultElementalWeight  = 0.4
	DefaultAlchemicalWeight = 0.3
	DefaultResonanceWeight  = 0.3
	DefaultBoostFloor       = 0.7
	DefaultBoostCeiling     = 1.3
)

// Resonance scores per planet: same sign, same element, compatible
// element pair, or none of those.
const (
	resonanceSameSign   = 1.0
	resonanceSameElem   = 0.8
	resonanceCompatible = 0.6
	resonanceWeak       = 0.3
)

// ComparisonConfig tunes the harmony blend and the boost range. Zero
// values fall back to the defaults.
type ComparisonConfig struct {
	ElementalWeight  float64 `yaml:"elementalWeight"`
	AlchemicalWeight float64 `yaml:"alchemicalWeight"`
	ResonanceWeight  float64 `yaml:"resonanceWeight"`
	BoostFloor       float64 `yaml:"boostFloor"`
	BoostCeiling     float64 `yaml:"boostCeiling"`
}

func (c ComparisonConfig) withDefaults() ComparisonConfig {
	if c.ElementalWeight <= 0 {
		c.ElementalWeight = DefaultElementalWeight
	}
	if c.AlchemicalWeight <= 0 {
		c.AlchemicalWeight = DefaultAlchemicalWeight
	}
	if c.ResonanceWeight <= 0 {
		c.ResonanceWeight = DefaultResonanceWeight
	}
	if c.BoostFloor <= 0 {
		c.BoostFloor = DefaultBoostFloor
	}
	if c.BoostCeiling <= c.BoostFloor {
		c.BoostCeiling = DefaultBoostCeiling
	}
	return c
}

// Comparison is the result of scoring a natal chart against a moment
// chart. Every component lives in [0, 1]; Boost lives in the configured
// boost range and rises monotonically with OverallHarmony.
type Comparison struct {
	ElementalHarmony    float64 `json:"elementalHarmony"`
	AlchemicalAlignment float64 `json:"alchemicalAlignment"`
	PlanetaryResonance  float64 `json:"planetaryResonance"`
	OverallHarmony      float64 `json:"overallHarmony"`
	Boost               float64 `json:"boost"`

	// ComparedPlanets counts the planets present in both charts that
	// fed the resonance score.
	ComparedPlanets int `json:"comparedPlanets"`

	// Stale is set when either chart was built from fallback-tier
	// positions.
	Stale bool `json:"stale,omitempty"`
}

// Comparator scores chart pairs under one configuration.
type Comparator struct {
	cfg ComparisonConfig
}

// NewComparator builds a comparator with the given configuration.
func NewComparator(cfg ComparisonConfig) *Comparator {
	return &Comparator{cfg: cfg.withDefaults()}
}

// cosineRescaled returns the cosine similarity of two component slices
// mapped from [-1, 1] into [0, 1]. A zero vector on either side scores
// the neutral midpoint 0.5.
func cosineRescaled(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.5
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (sim + 1) / 2
}

// resonance scores one planet's placement across the two charts.
func resonance(a, b astro.Position) float64 {
	if a.Sign == b.Sign {
		return resonanceSameSign
	}
	ea, eb := a.Sign.Element(), b.Sign.Element()
	if ea == eb {
		return resonanceSameElem
	}
	if astro.Compatible(ea, eb) {
		return resonanceCompatible
	}
	return resonanceWeak
}

// planetaryResonance averages per-planet placement scores over planets
// present in both charts. Disjoint charts score the neutral midpoint.
func planetaryResonance(natal, moment astro.PlanetaryPositions) (float64, int) {
	var total float64
	compared := 0
	for planet, np := range natal {
		mp, ok := moment[planet]
		if !ok {
			continue
		}
		total += resonance(np, mp)
		compared++
	}
	if compared == 0 {
		return 0.5, 0
	}
	return total / float64(compared), compared
}

// Compare scores how the current sky sits with a natal chart. Identical
// charts score 1.0 on every component and receive the top boost.
func (c *Comparator) Compare(natal, moment *Chart) Comparison {
	elemental := cosineRescaled(natal.Elements.Components(), moment.Elements.Components())

	natalShares, aOK := natal.Alchemy.Shares()
	momentShares, bOK := moment.Alchemy.Shares()
	alchemical := 0.5
	if aOK && bOK {
		alchemical = cosineRescaled(natalShares.Components(), momentShares.Components())
	}

	planetary, compared := planetaryResonance(natal.Positions, moment.Positions)

	overall := c.cfg.ElementalWeight*elemental +
		c.cfg.AlchemicalWeight*alchemical +
		c.cfg.ResonanceWeight*planetary

	return Comparison{
		ElementalHarmony:    elemental,
		AlchemicalAlignment: alchemical,
		PlanetaryResonance:  planetary,
		OverallHarmony:      overall,
		Boost:               c.Boost(overall),
		ComparedPlanets:     compared,
		Stale:               natal.Stale || moment.Stale,
	}
}

// Boost maps an overall harmony in [0, 1] linearly into the configured
// boost range. The recommendation layer multiplies its base score by
// this value.
func (c *Comparator) Boost(overallHarmony float64) float64 {
	h := alchemy.Clamp(overallHarmony, 0, 1)
	return c.cfg.BoostFloor + (c.cfg.BoostCeiling-c.cfg.BoostFloor)*h
}
