// Lunar phase computation from a reference new moon.
package astro

import (
	"math"
	"time"
)

// SynodicMonth is the mean length of a lunation in days.
const SynodicMonth = 29.53058867

// lunarEpoch is a known new moon used as the phase reference.
var lunarEpoch = time.Date(2023, time.January, 21, 20, 53, 0, 0, time.UTC)

// LunarPhase is one of the eight named moon phases.
type LunarPhase string

const (
	NewMoon        LunarPhase = "New Moon"
	WaxingCrescent LunarPhase = "Waxing Crescent"
	FirstQuarter   LunarPhase = "First Quarter"
	WaxingGibbous  LunarPhase = "Waxing Gibbous"
	FullMoon       LunarPhase = "Full Moon"
	WaningGibbous  LunarPhase = "Waning Gibbous"
	LastQuarter    LunarPhase = "Last Quarter"
	WaningCrescent LunarPhase = "Waning Crescent"
)

// LunarAge returns the moon's age in days within the current lunation.
func LunarAge(t time.Time) float64 {
	days := t.Sub(lunarEpoch).Hours() / 24
	age := math.Mod(days, SynodicMonth)
	if age < 0 {
		age += SynodicMonth
	}
	return age
}

// PhaseAt returns the named phase for a moment. Boundaries split the
// lunation into eight equal arcs centered on the principal phases.
func PhaseAt(t time.Time) LunarPhase {
	age := LunarAge(t)
	switch {
	case age < 1.84566:
		return NewMoon
	case age < 5.53699:
		return WaxingCrescent
	case age < 9.22831:
		return FirstQuarter
	case age < 12.91963:
		return WaxingGibbous
	case age < 16.61096:
		return FullMoon
	case age < 20.30228:
		return WaningGibbous
	case age < 23.99361:
		return LastQuarter
	case age < 27.68493:
		return WaningCrescent
	default:
		return NewMoon
	}
}

// Illumination returns the illuminated fraction of the lunar disc in [0, 1].
func Illumination(t time.Time) float64 {
	p := LunarAge(t) / SynodicMonth
	return 0.5 * (1 - math.Cos(2*math.Pi*p))
}

// LunarBoost returns a multiplier for how strongly a recipe dominated by the
// given element resonates with the current phase. New moons favor grounding
// Earth preparations, full moons favor Water, the quarters favor the active
// elements at reduced strength.
func LunarBoost(phase LunarPhase, dominant Element) float64 {
	switch phase {
	case NewMoon:
		if dominant == Earth {
			return 1.20
		}
	case FullMoon:
		if dominant == Water {
			return 1.20
		}
	case FirstQuarter, WaxingGibbous:
		if dominant == Fire {
			return 1.10
		}
	case LastQuarter, WaningCrescent, WaningGibbous:
		if dominant == Air {
			return 1.10
		}
	}
	return 1.0
}
