package alchemy

import "github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"

// Constitution describes a chart's baseline alchemical makeup derived
// from its elemental balance rather than from per-planet counts. It is
// the slow-moving profile a natal chart contributes when compared
// against the current sky.
type Constitution struct {
	Alchemy   AlchemicalCounts `json:"alchemy"`
	Elements  ElementalVector  `json:"elements"`
	Dominant  astro.Element    `json:"dominant"`
	Deficient astro.Element    `json:"deficient"`
}

// DeriveConstitution blends the elemental vector into the four
// alchemical properties. Each property draws from the two elements
// closest to its nature, majority share from the primary.
func DeriveConstitution(elements ElementalVector) Constitution {
	e := elements.Normalized()
	counts := AlchemicalCounts{
		Spirit:    0.6*e.Fire + 0.4*e.Air,
		Essence:   0.6*e.Water + 0.4*e.Air,
		Matter:    0.6*e.Earth + 0.4*e.Water,
		Substance: 0.6*e.Earth + 0.4*e.Fire,
	}
	if shares, ok := counts.Shares(); ok {
		counts = shares
	}

	return Constitution{
		Alchemy:   counts,
		Elements:  e,
		Dominant:  e.Dominant(),
		Deficient: e.Deficient(),
	}
}
