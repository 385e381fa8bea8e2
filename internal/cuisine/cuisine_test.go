package cuisine

import (
	"context"
	"math"
	"testing"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/thermo"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func plainRecord(id string, fire, water, earth, air float64) *recipe.RecipeComputedProperties {
	return &recipe.RecipeComputedProperties{
		RecipeID: id,
		Elements: alchemy.ElementalVector{Fire: fire, Water: water, Earth: earth, Air: air},
	}
}

func timedRecord(id string, positions astro.PlanetaryPositions) *recipe.RecipeComputedProperties {
	counts := alchemy.DefaultAlchemyTable().Derive(positions)
	elements := alchemy.ZodiacElemental(positions, nil)
	m := thermo.Compute(counts, elements)
	return &recipe.RecipeComputedProperties{
		RecipeID:  id,
		Elements:  elements,
		Alchemy:   &counts,
		Thermo:    &m,
		Positions: positions,
		HasTiming: true,
	}
}

func TestPropertyValueAvailability(t *testing.T) {
	plain := plainRecord("r1", 0.4, 0.3, 0.2, 0.1)

	if v, ok := propertyValue(plain, "Fire"); !ok || v != 0.4 {
		t.Fatalf("Fire = %v/%v, want 0.4/true", v, ok)
	}
	if _, ok := propertyValue(plain, "Spirit"); ok {
		t.Fatal("Spirit available without timing data")
	}
	if _, ok := propertyValue(plain, "Heat"); ok {
		t.Fatal("Heat available without timing data")
	}

	undefinedMonica := plainRecord("r2", 0.25, 0.25, 0.25, 0.25)
	undefinedMonica.Thermo = &thermo.Metrics{Kalchm: 0}
	if _, ok := propertyValue(undefinedMonica, "Monica"); ok {
		t.Fatal("undefined Monica contributed a value")
	}
	if v, ok := propertyValue(undefinedMonica, "Kalchm"); !ok || v != 0 {
		t.Fatalf("Kalchm = %v/%v, want 0/true", v, ok)
	}
}

func TestAggregateMeansAndVariance(t *testing.T) {
	agg := NewAggregator(0)
	records := []*recipe.RecipeComputedProperties{
		plainRecord("r1", 0.2, 0.4, 0.2, 0.2),
		plainRecord("r2", 0.3, 0.3, 0.2, 0.2),
		plainRecord("r3", 0.4, 0.2, 0.2, 0.2),
	}

	got, err := agg.Aggregate(context.Background(), "thai", records, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if got.RecipeCount != 3 {
		t.Fatalf("RecipeCount = %d, want 3", got.RecipeCount)
	}
	fire := got.Stats["Fire"]
	if !almostEqual(fire.Mean, 0.3, 1e-9) {
		t.Fatalf("Fire mean = %v, want 0.3", fire.Mean)
	}
	if !almostEqual(fire.Variance, 0.01, 1e-9) {
		t.Fatalf("Fire sample variance = %v, want 0.01", fire.Variance)
	}
	if !got.Elements.IsNormalized() {
		t.Fatalf("aggregate elements sum = %v, want 1.0", got.Elements.Sum())
	}
}

func TestAggregatePopularityWeighting(t *testing.T) {
	agg := NewAggregator(0)
	light := plainRecord("r1", 0.2, 0.4, 0.2, 0.2)
	light.Popularity = 1
	heavy := plainRecord("r2", 0.5, 0.1, 0.2, 0.2)
	heavy.Popularity = 3

	got, err := agg.Aggregate(context.Background(), "thai", []*recipe.RecipeComputedProperties{light, heavy}, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	// (1*0.2 + 3*0.5) / 4
	if fire := got.Stats["Fire"]; !almostEqual(fire.Mean, 0.425, 1e-9) {
		t.Fatalf("weighted Fire mean = %v, want 0.425", fire.Mean)
	}
}

func TestAggregateSkipsUntimedForAlchemy(t *testing.T) {
	agg := NewAggregator(0)
	timed := timedRecord("r1", astro.PlanetaryPositions{
		astro.Sun:  {Sign: astro.Leo},
		astro.Moon: {Sign: astro.Cancer},
	})
	plain := plainRecord("r2", 0.25, 0.25, 0.25, 0.25)

	got, err := agg.Aggregate(context.Background(), "thai", []*recipe.RecipeComputedProperties{timed, plain}, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if got.Stats["Fire"].Count != 2 {
		t.Fatalf("Fire count = %d, want 2", got.Stats["Fire"].Count)
	}
	if got.Stats["Spirit"].Count != 1 {
		t.Fatalf("Spirit count = %d, want 1 (untimed recipe skipped)", got.Stats["Spirit"].Count)
	}
	if got.Stats["Heat"].Count != 1 {
		t.Fatalf("Heat count = %d, want 1", got.Stats["Heat"].Count)
	}
}

func TestZScoreZeroAtGlobalMean(t *testing.T) {
	if z := zScore(0.3, 0.3, 0.01); z != 0 {
		t.Fatalf("zScore at the mean = %v, want 0", z)
	}
	if z := zScore(0.5, 0.3, 0); z != 0 {
		t.Fatalf("zScore with zero spread = %v, want 0", z)
	}
}

func TestSignatures(t *testing.T) {
	baseline := &Baseline{
		Stats: map[string]PropertyStats{
			"Fire":  {Mean: 0.25, Variance: 0.0025, Count: 100}, // sd 0.05
			"Water": {Mean: 0.25, Variance: 0.0025, Count: 100},
			"Earth": {Mean: 0.25, Variance: 0.0025, Count: 100},
			"Air":   {Mean: 0.25, Variance: 0.0025, Count: 100},
		},
	}

	agg := NewAggregator(0)
	// Fire mean 0.45: z = 4.0. Water mean 0.05: z = -4.0. Earth 0.3: z = 1.0.
	records := []*recipe.RecipeComputedProperties{
		plainRecord("r1", 0.45, 0.05, 0.3, 0.2),
	}

	got, err := agg.Aggregate(context.Background(), "bbq", records, baseline)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(got.Signatures) != 2 {
		t.Fatalf("signatures = %d, want 2 (Fire and Water)", len(got.Signatures))
	}
	for _, sig := range got.Signatures {
		if sig.Property == "Earth" {
			t.Fatal("Earth flagged at |z| = 1.0, below the 1.5 threshold")
		}
	}
	if math.Abs(got.Signatures[0].ZScore) < math.Abs(got.Signatures[1].ZScore) {
		t.Fatal("signatures not sorted by |z| descending")
	}
	for _, sig := range got.Signatures {
		if sig.Property == "Fire" && !almostEqual(sig.ZScore, 4.0, 1e-9) {
			t.Fatalf("Fire z = %v, want 4.0", sig.ZScore)
		}
	}
}

func TestComputeBaseline(t *testing.T) {
	agg := NewAggregator(0)
	corpus := []*recipe.RecipeComputedProperties{
		plainRecord("r1", 0.2, 0.4, 0.2, 0.2),
		plainRecord("r2", 0.4, 0.2, 0.2, 0.2),
	}

	base, err := agg.ComputeBaseline(context.Background(), corpus)
	if err != nil {
		t.Fatalf("ComputeBaseline: %v", err)
	}

	if base.RecipeCount != 2 {
		t.Fatalf("RecipeCount = %d, want 2", base.RecipeCount)
	}
	if !almostEqual(base.Stats["Fire"].Mean, 0.3, 1e-9) {
		t.Fatalf("baseline Fire mean = %v, want 0.3", base.Stats["Fire"].Mean)
	}

	// A cuisine drawn from the corpus mean scores z = 0 and no signatures.
	got, err := agg.Aggregate(context.Background(), "avg", []*recipe.RecipeComputedProperties{
		plainRecord("r3", 0.3, 0.3, 0.2, 0.2),
	}, base)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for _, sig := range got.Signatures {
		if sig.Property == "Fire" {
			t.Fatalf("Fire flagged at the global mean: z = %v", sig.ZScore)
		}
	}
}

func TestPatterns(t *testing.T) {
	leo := astro.PlanetaryPositions{astro.Sun: {Sign: astro.Leo}, astro.Moon: {Sign: astro.Cancer}}
	leoAgain := astro.PlanetaryPositions{astro.Sun: {Sign: astro.Leo}, astro.Moon: {Sign: astro.Pisces}}
	virgo := astro.PlanetaryPositions{astro.Sun: {Sign: astro.Virgo}, astro.Moon: {Sign: astro.Aries}}

	records := []*recipe.RecipeComputedProperties{
		timedRecord("r1", leo),
		timedRecord("r2", leoAgain),
		timedRecord("r3", virgo),
		plainRecord("r4", 0.25, 0.25, 0.25, 0.25), // untimed, excluded from the denominator
	}

	got := patterns(records)
	if len(got) != 1 {
		t.Fatalf("patterns = %d, want 1", len(got))
	}
	p := got[0]
	if p.Planet != astro.Sun || p.Sign != astro.Leo {
		t.Fatalf("pattern = %s in %s, want sun in leo", p.Planet, p.Sign)
	}
	if !almostEqual(p.Share, 2.0/3.0, 1e-9) {
		t.Fatalf("share = %v, want 2/3", p.Share)
	}
}

func TestPartitionedMatchesSequential(t *testing.T) {
	records := []*recipe.RecipeComputedProperties{
		plainRecord("r1", 0.2, 0.4, 0.2, 0.2),
		plainRecord("r2", 0.3, 0.3, 0.2, 0.2),
		plainRecord("r3", 0.4, 0.2, 0.2, 0.2),
		plainRecord("r4", 0.5, 0.1, 0.2, 0.2),
		plainRecord("r5", 0.1, 0.5, 0.2, 0.2),
	}

	seq, err := NewAggregator(100).Aggregate(context.Background(), "x", records, nil)
	if err != nil {
		t.Fatalf("sequential Aggregate: %v", err)
	}
	par, err := NewAggregator(2).Aggregate(context.Background(), "x", records, nil)
	if err != nil {
		t.Fatalf("partitioned Aggregate: %v", err)
	}

	for _, prop := range []string{"Fire", "Water", "Earth", "Air"} {
		if !almostEqual(seq.Stats[prop].Mean, par.Stats[prop].Mean, 1e-12) {
			t.Fatalf("%s mean differs: %v vs %v", prop, seq.Stats[prop].Mean, par.Stats[prop].Mean)
		}
		if !almostEqual(seq.Stats[prop].Variance, par.Stats[prop].Variance, 1e-12) {
			t.Fatalf("%s variance differs: %v vs %v", prop, seq.Stats[prop].Variance, par.Stats[prop].Variance)
		}
	}
}
