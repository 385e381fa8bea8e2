package cuisine

import (
	"math"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

// PropertyNames lists every scalar property a recipe record can
// contribute, in reporting order: the four elements, the four alchemical
// counts, then the thermodynamic metrics.
var PropertyNames = []string{
	"Fire", "Water", "Earth", "Air",
	"Spirit", "Essence", "Matter", "Substance",
	"Heat", "Entropy", "Reactivity", "GregsEnergy", "Kalchm", "Monica",
}

// propertyValue extracts one named scalar from a record. The second
// return is false when the record cannot contribute: alchemical and
// thermodynamic properties without timing data, and Monica wherever it
// is undefined.
func propertyValue(p *recipe.RecipeComputedProperties, name string) (float64, bool) {
	switch name {
	case "Fire":
		return p.Elements.Fire, true
	case "Water":
		return p.Elements.Water, true
	case "Earth":
		return p.Elements.Earth, true
	case "Air":
		return p.Elements.Air, true
	}

	if p.Alchemy != nil {
		switch name {
		case "Spirit":
			return p.Alchemy.Spirit, true
		case "Essence":
			return p.Alchemy.Essence, true
		case "Matter":
			return p.Alchemy.Matter, true
		case "Substance":
			return p.Alchemy.Substance, true
		}
	}

	if p.Thermo != nil {
		switch name {
		case "Heat":
			return p.Thermo.Heat, true
		case "Entropy":
			return p.Thermo.Entropy, true
		case "Reactivity":
			return p.Thermo.Reactivity, true
		case "GregsEnergy":
			return p.Thermo.GregsEnergy, true
		case "Kalchm":
			return p.Thermo.Kalchm, true
		case "Monica":
			if p.Thermo.Monica.Defined {
				return p.Thermo.Monica.Value, true
			}
		}
	}

	return 0, false
}

// partial accumulates one partition's contribution to one property.
// Weighted sums feed the mean; the unweighted sums feed the sample
// variance.
type partial struct {
	wSum  float64
	wxSum float64
	xSum  float64
	x2Sum float64
	n     int
}

func (a partial) merge(b partial) partial {
	return partial{
		wSum:  a.wSum + b.wSum,
		wxSum: a.wxSum + b.wxSum,
		xSum:  a.xSum + b.xSum,
		x2Sum: a.x2Sum + b.x2Sum,
		n:     a.n + b.n,
	}
}

func (a *partial) add(x, w float64) {
	a.wSum += w
	a.wxSum += w * x
	a.xSum += x
	a.x2Sum += x * x
	a.n++
}

// PropertyStats summarizes one property across a recipe set.
type PropertyStats struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Count    int     `json:"count"`
}

// stats finalizes a merged partial into mean and sample variance.
func (a partial) stats() PropertyStats {
	s := PropertyStats{Count: a.n}
	if a.n == 0 || a.wSum == 0 {
		return s
	}
	s.Mean = a.wxSum / a.wSum

	if a.n > 1 {
		mean := a.xSum / float64(a.n)
		ss := a.x2Sum - float64(a.n)*mean*mean
		if ss < 0 {
			ss = 0
		}
		s.Variance = ss / float64(a.n-1)
	}
	return s
}

// weightOf returns a recipe's aggregation weight: its popularity when
// supplied, equal weight otherwise.
func weightOf(p *recipe.RecipeComputedProperties) float64 {
	if p.Popularity > 0 {
		return p.Popularity
	}
	return 1.0
}

// accumulate folds one partition of records into per-property partials.
func accumulate(records []*recipe.RecipeComputedProperties) map[string]partial {
	out := make(map[string]partial, len(PropertyNames))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		w := weightOf(rec)
		for _, name := range PropertyNames {
			x, ok := propertyValue(rec, name)
			if !ok {
				continue
			}
			p := out[name]
			p.add(x, w)
			out[name] = p
		}
	}
	return out
}

func mergeAll(parts []map[string]partial) map[string]partial {
	out := make(map[string]partial, len(PropertyNames))
	for _, m := range parts {
		for name, p := range m {
			out[name] = out[name].merge(p)
		}
	}
	return out
}

// zScore places a cuisine mean against the global distribution. A zero
// global spread yields zero rather than a division fault.
func zScore(cuisineMean, globalMean, globalVariance float64) float64 {
	sd := math.Sqrt(globalVariance)
	if sd == 0 {
		return 0
	}
	return (cuisineMean - globalMean) / sd
}
