package chart

import (
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// Group summarizes several natal charts for shared-meal planning: the
// averaged elemental balance and what the group as a whole lacks.
type Group struct {
	Participants int                       `json:"participants"`
	Elements     alchemy.ElementalVector   `json:"elements"`
	Alchemy      alchemy.AlchemicalCounts  `json:"alchemy"`
	Deficits     map[astro.Element]float64 `json:"deficits"`
}

// GroupEquilibrium averages the elemental vectors of several charts and
// reports each element's deficit against the balanced 0.25 share,
// clamped at zero. Elements the group already has in abundance carry a
// zero deficit rather than a surplus.
func GroupEquilibrium(charts []*Chart) Group {
	g := Group{Deficits: make(map[astro.Element]float64, 4)}

	var elements alchemy.ElementalVector
	var counts alchemy.AlchemicalCounts
	for _, c := range charts {
		if c == nil {
			continue
		}
		elements = elements.Add(c.Elements)
		counts = counts.Add(c.Alchemy)
		g.Participants++
	}
	if g.Participants == 0 {
		return g
	}

	g.Elements = elements.Normalized()
	g.Alchemy = counts.Scale(1 / float64(g.Participants))
	for _, e := range astro.Elements() {
		g.Deficits[e] = alchemy.Clamp(0.25-g.Elements.Get(e), 0, 0.25)
	}
	return g
}
