package alchemy

import (
	"math"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// PlanetWeights assigns a relative influence to each planet when
// aggregating zodiac-elemental contributions. A nil or empty set means
// every planet counts equally at 1.0.
type PlanetWeights map[astro.Planet]float64

// Weight returns the planet's weight, defaulting to 1.0 when the set is
// nil and 0.0 when the set is present but omits the planet.
func (w PlanetWeights) Weight(p astro.Planet) float64 {
	if w == nil {
		return 1.0
	}
	return w[p]
}

// TraditionalWeights returns the classical influence hierarchy: the
// luminaries dominate, the personal planets matter, the social planets
// count singly, and the outer planets whisper.
func TraditionalWeights() PlanetWeights {
	return PlanetWeights{
		astro.Sun:     3.0,
		astro.Moon:    3.0,
		astro.Mercury: 1.5,
		astro.Venus:   1.5,
		astro.Mars:    1.5,
		astro.Jupiter: 1.0,
		astro.Saturn:  1.0,
		astro.Uranus:  0.5,
		astro.Neptune: 0.5,
		astro.Pluto:   0.5,
	}
}

// planetMassKg holds approximate body masses in kilograms.
var planetMassKg = map[astro.Planet]float64{
	astro.Sun:     1.989e30,
	astro.Moon:    7.342e22,
	astro.Mercury: 3.301e23,
	astro.Venus:   4.867e24,
	astro.Mars:    6.417e23,
	astro.Jupiter: 1.898e27,
	astro.Saturn:  5.683e26,
	astro.Uranus:  8.681e25,
	astro.Neptune: 1.024e26,
	astro.Pluto:   1.309e22,
}

// MassWeights returns planet weights from log-scaled body mass, mapped to
// [0, 1] with the lightest body at 0 and the heaviest at 1.
func MassWeights() PlanetWeights {
	minLog := math.Inf(1)
	maxLog := math.Inf(-1)
	logs := make(map[astro.Planet]float64, len(planetMassKg))
	for p, m := range planetMassKg {
		l := math.Log10(m)
		logs[p] = l
		if l < minLog {
			minLog = l
		}
		if l > maxLog {
			maxLog = l
		}
	}

	out := make(PlanetWeights, len(logs))
	span := maxLog - minLog
	for p, l := range logs {
		out[p] = (l - minLog) / span
	}
	return out
}

// ZodiacElemental accumulates each planet's sign element into an elemental
// vector, weighted per planet, and returns the normalized result. Empty
// positions produce the uniform vector.
func ZodiacElemental(positions astro.PlanetaryPositions, weights PlanetWeights) ElementalVector {
	var acc ElementalVector
	for planet, pos := range positions {
		w := weights.Weight(planet)
		if w <= 0 {
			continue
		}
		switch pos.Sign.Element() {
		case astro.Fire:
			acc.Fire += w
		case astro.Water:
			acc.Water += w
		case astro.Earth:
			acc.Earth += w
		case astro.Air:
			acc.Air += w
		}
	}
	return acc.Normalized()
}
