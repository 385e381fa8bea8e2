// Package alchemy provides the elemental and alchemical quantity types and
// the derivations that produce them from planetary positions.
package alchemy

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// NormalizedTolerance is how far a normalized vector's component sum may
// drift from 1.0.
const NormalizedTolerance = 1e-3

// ElementalVector holds the four elemental shares of an entity.
// A normalized vector sums to 1.0 within NormalizedTolerance; raw
// accumulations may hold any non-negative values.
type ElementalVector struct {
	Fire  float64 `json:"Fire"`
	Water float64 `json:"Water"`
	Earth float64 `json:"Earth"`
	Air   float64 `json:"Air"`
}

// UniformVector is the neutral elemental state used when no data is
// available: every element at 0.25.
func UniformVector() ElementalVector {
	return ElementalVector{Fire: 0.25, Water: 0.25, Earth: 0.25, Air: 0.25}
}

// Sum returns the total of the four components.
func (v ElementalVector) Sum() float64 {
	return v.Fire + v.Water + v.Earth + v.Air
}

// IsNormalized reports whether the components sum to 1.0 within tolerance.
func (v ElementalVector) IsNormalized() bool {
	return math.Abs(v.Sum()-1.0) <= NormalizedTolerance
}

// Normalized returns the vector scaled to sum to 1.0. A zero vector
// normalizes to the uniform state rather than dividing by zero.
func (v ElementalVector) Normalized() ElementalVector {
	s := v.Sum()
	if s <= 0 {
		return UniformVector()
	}
	return ElementalVector{
		Fire:  v.Fire / s,
		Water: v.Water / s,
		Earth: v.Earth / s,
		Air:   v.Air / s,
	}
}

// Add returns the component-wise sum of two vectors.
func (v ElementalVector) Add(o ElementalVector) ElementalVector {
	return ElementalVector{
		Fire:  v.Fire + o.Fire,
		Water: v.Water + o.Water,
		Earth: v.Earth + o.Earth,
		Air:   v.Air + o.Air,
	}
}

// Scale returns the vector with every component multiplied by f.
func (v ElementalVector) Scale(f float64) ElementalVector {
	return ElementalVector{
		Fire:  v.Fire * f,
		Water: v.Water * f,
		Earth: v.Earth * f,
		Air:   v.Air * f,
	}
}

// Get returns the share of a single element.
func (v ElementalVector) Get(e astro.Element) float64 {
	switch e {
	case astro.Fire:
		return v.Fire
	case astro.Water:
		return v.Water
	case astro.Earth:
		return v.Earth
	case astro.Air:
		return v.Air
	}
	return 0
}

// Dominant returns the element with the largest share. Ties resolve in
// canonical element order.
func (v ElementalVector) Dominant() astro.Element {
	best := astro.Fire
	bestVal := v.Fire
	for _, e := range []astro.Element{astro.Water, astro.Earth, astro.Air} {
		if val := v.Get(e); val > bestVal {
			best, bestVal = e, val
		}
	}
	return best
}

// Deficient returns the element with the smallest share. Ties resolve in
// canonical element order.
func (v ElementalVector) Deficient() astro.Element {
	worst := astro.Fire
	worstVal := v.Fire
	for _, e := range []astro.Element{astro.Water, astro.Earth, astro.Air} {
		if val := v.Get(e); val < worstVal {
			worst, worstVal = e, val
		}
	}
	return worst
}

// Components returns the vector as a slice in canonical element order.
func (v ElementalVector) Components() []float64 {
	return []float64{v.Fire, v.Water, v.Earth, v.Air}
}

// Clamp limits v to the range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamped returns the vector with every component limited to [0, 1].
func (v ElementalVector) Clamped() ElementalVector {
	return ElementalVector{
		Fire:  Clamp(v.Fire, 0, 1),
		Water: Clamp(v.Water, 0, 1),
		Earth: Clamp(v.Earth, 0, 1),
		Air:   Clamp(v.Air, 0, 1),
	}
}
