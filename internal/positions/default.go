package positions

import (
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
)

// defaultChartDate is the reference moment the hardcoded chart describes.
var defaultChartDate = time.Date(2025, time.March, 28, 12, 0, 0, 0, time.UTC)

// DefaultChart returns the hardcoded reference chart for March 28, 2025.
// It is the last-resort tier: astronomically plausible, never current.
func DefaultChart() astro.PlanetaryPositions {
	return astro.PlanetaryPositions{
		astro.Sun:     {Sign: astro.Aries, Degree: 8.5},
		astro.Moon:    {Sign: astro.Aries, Degree: 1.57},
		astro.Mercury: {Sign: astro.Aries, Degree: 0.85, Retrograde: true},
		astro.Venus:   {Sign: astro.Pisces, Degree: 29.08, Retrograde: true},
		astro.Mars:    {Sign: astro.Cancer, Degree: 22.63},
		astro.Jupiter: {Sign: astro.Gemini, Degree: 15.52},
		astro.Saturn:  {Sign: astro.Pisces, Degree: 24.12},
		astro.Uranus:  {Sign: astro.Taurus, Degree: 24.62},
		astro.Neptune: {Sign: astro.Pisces, Degree: 29.93},
		astro.Pluto:   {Sign: astro.Aquarius, Degree: 3.5},
	}
}
