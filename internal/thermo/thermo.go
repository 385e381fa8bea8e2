// Package thermo computes the thermodynamic metrics of a prepared dish:
// Heat, Entropy, Reactivity, the derived Greg's Energy, the equilibrium
// constant Kalchm, and the dynamic constant Monica. Every function is
// pure; inputs are alchemical counts plus an elemental vector.
package thermo

import (
	"math"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
)

// Monica is the dynamic stability constant. It has no defined value when
// Kalchm is non-positive or the denominator degenerates; Defined reports
// whether Value holds a real number. An undefined Monica means the system
// has no stable dynamic equilibrium, which is itself a result.
type Monica struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Metrics bundles the six thermodynamic quantities of one computation.
type Metrics struct {
	Heat        float64 `json:"heat"`
	Entropy     float64 `json:"entropy"`
	Reactivity  float64 `json:"reactivity"`
	GregsEnergy float64 `json:"gregsEnergy"`
	Kalchm      float64 `json:"kalchm"`
	Monica      Monica  `json:"monica"`
}

// ratio returns num/den², or 0 when the denominator is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / (den * den)
}

// Heat measures active thermal energy: spirit and fire pushing against
// everything passive.
func Heat(c alchemy.AlchemicalCounts, e alchemy.ElementalVector) float64 {
	num := c.Spirit*c.Spirit + e.Fire*e.Fire
	den := c.Substance + c.Essence + c.Matter + e.Water + e.Air + e.Earth
	return ratio(num, den)
}

// Entropy measures disorder: the volatile components over the binding ones.
func Entropy(c alchemy.AlchemicalCounts, e alchemy.ElementalVector) float64 {
	num := c.Spirit*c.Spirit + c.Substance*c.Substance + e.Fire*e.Fire + e.Air*e.Air
	den := c.Essence + c.Matter + e.Earth + e.Water
	return ratio(num, den)
}

// Reactivity measures potential for transformation: everything mobile over
// the inert remainder.
func Reactivity(c alchemy.AlchemicalCounts, e alchemy.ElementalVector) float64 {
	num := c.Spirit*c.Spirit + c.Substance*c.Substance + c.Essence*c.Essence +
		e.Fire*e.Fire + e.Air*e.Air + e.Water*e.Water
	den := c.Matter + e.Earth
	return ratio(num, den)
}

// GregsEnergy is the net usable energy after disorder takes its share.
func GregsEnergy(heat, entropy, reactivity float64) float64 {
	return heat - entropy*reactivity
}

// selfPow computes x^x with the convention 0^0 = 1.
func selfPow(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Pow(x, x)
}

// Kalchm is the equilibrium constant: spiritual components in the
// numerator, material components in the denominator, each raised to its
// own power.
func Kalchm(c alchemy.AlchemicalCounts) float64 {
	num := selfPow(c.Spirit) * selfPow(c.Essence)
	den := selfPow(c.Matter) * selfPow(c.Substance)
	if den == 0 {
		return 0
	}
	return num / den
}

// MonicaConstant derives the dynamic constant from Greg's Energy,
// Reactivity and Kalchm. Undefined when Kalchm is non-positive or the
// denominator Reactivity·ln(Kalchm) is zero.
func MonicaConstant(gregsEnergy, reactivity, kalchm float64) Monica {
	if kalchm <= 0 {
		return Monica{}
	}
	den := reactivity * math.Log(kalchm)
	if den == 0 || math.IsNaN(den) {
		return Monica{}
	}
	return Monica{Value: -gregsEnergy / den, Defined: true}
}

// Compute evaluates the full metric set for one counts/vector pair.
func Compute(c alchemy.AlchemicalCounts, e alchemy.ElementalVector) Metrics {
	heat := Heat(c, e)
	entropy := Entropy(c, e)
	reactivity := Reactivity(c, e)
	energy := GregsEnergy(heat, entropy, reactivity)
	kalchm := Kalchm(c)

	return Metrics{
		Heat:        heat,
		Entropy:     entropy,
		Reactivity:  reactivity,
		GregsEnergy: energy,
		Kalchm:      kalchm,
		Monica:      MonicaConstant(energy, reactivity, kalchm),
	}
}
