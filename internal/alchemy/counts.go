package alchemy

import (
	"fmt"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// AlchemicalCounts holds the four alchemical quantities. These are additive
// counts derived only from planetary positions, never from an elemental
// vector, and carry no normalization invariant.
type AlchemicalCounts struct {
	Spirit    float64 `json:"Spirit"`
	Essence   float64 `json:"Essence"`
	Matter    float64 `json:"Matter"`
	Substance float64 `json:"Substance"`
}

// Sum returns the total of the four quantities.
func (c AlchemicalCounts) Sum() float64 {
	return c.Spirit + c.Essence + c.Matter + c.Substance
}

// Add returns the component-wise sum of two count sets.
func (c AlchemicalCounts) Add(o AlchemicalCounts) AlchemicalCounts {
	return AlchemicalCounts{
		Spirit:    c.Spirit + o.Spirit,
		Essence:   c.Essence + o.Essence,
		Matter:    c.Matter + o.Matter,
		Substance: c.Substance + o.Substance,
	}
}

// Scale returns the counts with every component multiplied by f.
func (c AlchemicalCounts) Scale(f float64) AlchemicalCounts {
	return AlchemicalCounts{
		Spirit:    c.Spirit * f,
		Essence:   c.Essence * f,
		Matter:    c.Matter * f,
		Substance: c.Substance * f,
	}
}

// Shares returns the counts normalized to sum to 1.0 for comparison
// purposes, and false if the counts are all zero.
func (c AlchemicalCounts) Shares() (AlchemicalCounts, bool) {
	s := c.Sum()
	if s <= 0 {
		return AlchemicalCounts{}, false
	}
	return c.Scale(1 / s), true
}

// Components returns the counts as a slice in Spirit, Essence, Matter,
// Substance order.
func (c AlchemicalCounts) Components() []float64 {
	return []float64{c.Spirit, c.Essence, c.Matter, c.Substance}
}

// AlchemyTable maps each planet to its fixed alchemical contribution.
type AlchemyTable map[astro.Planet]AlchemicalCounts

// DefaultAlchemyTable returns the standard planetary contributions. The
// luminaries and personal planets carry single-point rows; Jupiter and
// Saturn blend Spirit with Essence and Matter; the outer planets carry
// Essence alongside Matter or Substance.
func DefaultAlchemyTable() AlchemyTable {
	return AlchemyTable{
		astro.Sun:     {Spirit: 1},
		astro.Moon:    {Essence: 1, Matter: 1},
		astro.Mercury: {Spirit: 1, Substance: 1},
		astro.Venus:   {Essence: 1, Matter: 1},
		astro.Mars:    {Essence: 1, Matter: 1},
		astro.Jupiter: {Spirit: 1, Essence: 1},
		astro.Saturn:  {Spirit: 1, Matter: 1},
		astro.Uranus:  {Essence: 1, Matter: 1},
		astro.Neptune: {Essence: 1, Substance: 1},
		astro.Pluto:   {Essence: 1, Matter: 1},
	}
}

// Validate checks that every table key is a known planet.
func (t AlchemyTable) Validate() error {
	for planet := range t {
		if !planet.Valid() {
			return fmt.Errorf("alchemy table: unknown planet %q", planet)
		}
	}
	return nil
}

// Derive sums the table's contributions over every planet present in the
// positions. Planets absent from the positions, or from the table, simply
// contribute nothing. This is the only source of AlchemicalCounts in the
// engine; callers without positions must carry an explicit absent value.
func (t AlchemyTable) Derive(positions astro.PlanetaryPositions) AlchemicalCounts {
	var out AlchemicalCounts
	for planet := range positions {
		if row, ok := t[planet]; ok {
			out = out.Add(row)
		}
	}
	return out
}
