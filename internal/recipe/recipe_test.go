package recipe

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestQuantityScale(t *testing.T) {
	if s := QuantityScale(0, 100, 1000); s != 0 {
		t.Fatalf("scale(0) = %v, want 0", s)
	}
	if s := QuantityScale(-5, 100, 1000); s != 0 {
		t.Fatalf("scale(-5) = %v, want 0", s)
	}
	if s := QuantityScale(1000, 100, 1000); !almostEqual(s, 1.0, 1e-9) {
		t.Fatalf("scale(Qmax) = %v, want 1.0", s)
	}

	// Diminishing contribution: doubling quantity less than doubles scale.
	s100 := QuantityScale(100, 100, 1000)
	s200 := QuantityScale(200, 100, 1000)
	if s200 >= 2*s100 {
		t.Fatalf("scale(200) = %v not sublinear versus scale(100) = %v", s200, s100)
	}
	if s200 <= s100 {
		t.Fatalf("scale not monotonic: scale(200) = %v <= scale(100) = %v", s200, s100)
	}

	// No hard ceiling beyond Qmax.
	if s := QuantityScale(2000, 100, 1000); s <= 1.0 {
		t.Fatalf("scale(2*Qmax) = %v, want above 1.0", s)
	}
}

func TestIngredientElemental(t *testing.T) {
	fire := &IngredientRecord{ID: "chili", Name: "chili", Elements: alchemy.ElementalVector{Fire: 0.7, Water: 0.1, Earth: 0.1, Air: 0.1}}
	water := &IngredientRecord{ID: "cucumber", Name: "cucumber", Elements: alchemy.ElementalVector{Fire: 0.05, Water: 0.7, Earth: 0.15, Air: 0.1}}

	t.Run("no ingredients is uniform", func(t *testing.T) {
		got := IngredientElemental(nil, AggregatorConfig{})
		if got != alchemy.UniformVector() {
			t.Fatalf("IngredientElemental(nil) = %+v, want uniform", got)
		}
	})

	t.Run("equal quantities average", func(t *testing.T) {
		got := IngredientElemental([]ResolvedIngredient{
			{Record: fire, Quantity: 100},
			{Record: water, Quantity: 100},
		}, AggregatorConfig{})

		if !got.IsNormalized() {
			t.Fatalf("result not normalized: sum = %v", got.Sum())
		}
		want := fire.Elements.Add(water.Elements).Normalized()
		if !almostEqual(got.Fire, want.Fire, 1e-9) {
			t.Fatalf("Fire = %v, want %v", got.Fire, want.Fire)
		}
	})

	t.Run("larger quantity dominates", func(t *testing.T) {
		got := IngredientElemental([]ResolvedIngredient{
			{Record: fire, Quantity: 500},
			{Record: water, Quantity: 20},
		}, AggregatorConfig{})
		if got.Fire <= got.Water {
			t.Fatalf("Fire %v not dominant over Water %v", got.Fire, got.Water)
		}
	})

	t.Run("zero quantities are uniform", func(t *testing.T) {
		got := IngredientElemental([]ResolvedIngredient{{Record: fire, Quantity: 0}}, AggregatorConfig{})
		if got != alchemy.UniformVector() {
			t.Fatalf("all-zero quantities = %+v, want uniform", got)
		}
	})
}

func TestCombine(t *testing.T) {
	ingredient := alchemy.ElementalVector{Fire: 1}
	zodiac := alchemy.ElementalVector{Water: 1}

	t.Run("with zodiac", func(t *testing.T) {
		got := Combine(ingredient, zodiac, true, AggregatorConfig{})
		if !almostEqual(got.Fire, 0.7, 1e-9) {
			t.Fatalf("Fire = %v, want 0.7", got.Fire)
		}
		if !almostEqual(got.Water, 0.3, 1e-9) {
			t.Fatalf("Water = %v, want 0.3", got.Water)
		}
	})

	t.Run("without zodiac ingredient stands alone", func(t *testing.T) {
		got := Combine(ingredient, zodiac, false, AggregatorConfig{})
		if !almostEqual(got.Fire, 1.0, 1e-9) {
			t.Fatalf("Fire = %v, want 1.0", got.Fire)
		}
		if got.Water != 0 {
			t.Fatalf("Water = %v, want 0", got.Water)
		}
	})
}

func TestTransformerEmptyMethodsNoOp(t *testing.T) {
	tr := NewTransformer(nil)
	// Dyadic components sum to exactly 1.0, so the post-apply renormalize
	// is the identity.
	in := alchemy.ElementalVector{Fire: 0.5, Water: 0.25, Earth: 0.125, Air: 0.125}

	got := tr.Apply(in, nil)
	if got != in {
		t.Fatalf("Apply(empty) = %+v, want input %+v", got, in)
	}
}

func TestTransformerGrilling(t *testing.T) {
	tr := NewTransformer(nil)
	in := alchemy.ElementalVector{Fire: 0.25, Water: 0.25, Earth: 0.25, Air: 0.25}

	got := tr.Apply(in, []string{"grilling"})
	if !got.IsNormalized() {
		t.Fatalf("result not normalized: sum = %v", got.Sum())
	}
	// Fire 0.35, Water 0.15, Earth 0.225, Air 0.275 before the (unit) renormalize.
	if !almostEqual(got.Fire, 0.35, 1e-9) {
		t.Fatalf("Fire = %v, want 0.35", got.Fire)
	}
	if !almostEqual(got.Water, 0.15, 1e-9) {
		t.Fatalf("Water = %v, want 0.15", got.Water)
	}
}

func TestTransformerOrderMatters(t *testing.T) {
	tr := NewTransformer(nil)
	// Concentrated enough that grilling saturates Fire at the clamp.
	in := alchemy.ElementalVector{Fire: 0.85, Water: 0.05, Earth: 0.05, Air: 0.05}

	grillSteam := tr.Apply(in, []string{"grilling", "steaming"})
	steamGrill := tr.Apply(in, []string{"steaming", "grilling"})

	if almostEqual(grillSteam.Fire, steamGrill.Fire, 1e-9) {
		t.Fatalf("method order had no effect: both Fire = %v", grillSteam.Fire)
	}
}

func TestTransformerUnknownMethodSkipped(t *testing.T) {
	tr := NewTransformer(nil)
	in := alchemy.ElementalVector{Fire: 0.5, Water: 0.25, Earth: 0.125, Air: 0.125}

	got := tr.Apply(in, []string{"sous-vide-unknown"})
	if got != in {
		t.Fatalf("unknown method changed the vector: %+v", got)
	}
}

func TestContentHash(t *testing.T) {
	base := func() *RecipeDefinition {
		return &RecipeDefinition{
			ID:   "r1",
			Name: "Grilled Halloumi",
			Ingredients: []RecipeIngredient{
				{IngredientID: "halloumi", Quantity: 200, Unit: "g"},
			},
			Methods: []string{"grilling"},
		}
	}

	a := base()
	b := base()
	if a.ContentHash() != b.ContentHash() {
		t.Fatal("identical definitions hash differently")
	}

	b.Ingredients[0].Quantity = 250
	if a.ContentHash() == b.ContentHash() {
		t.Fatal("quantity change did not change the hash")
	}

	c := base()
	c.Methods = []string{"grilling", "steaming"}
	if a.ContentHash() == c.ContentHash() {
		t.Fatal("method change did not change the hash")
	}

	d := base()
	d.Positions = astro.PlanetaryPositions{astro.Sun: {Sign: astro.Leo}}
	if a.ContentHash() == d.ContentHash() {
		t.Fatal("timing change did not change the hash")
	}
}

type stubSource struct {
	records map[string]*IngredientRecord
	calls   atomic.Int64
}

func (s *stubSource) Ingredient(_ context.Context, id string) (*IngredientRecord, error) {
	s.calls.Add(1)
	rec, ok := s.records[id]
	if !ok {
		return nil, errors.New("not in catalog")
	}
	return rec, nil
}

func testSource() *stubSource {
	return &stubSource{records: map[string]*IngredientRecord{
		"chili": {ID: "chili", Name: "chili", Elements: alchemy.ElementalVector{Fire: 0.7, Water: 0.1, Earth: 0.1, Air: 0.1}},
		"rice":  {ID: "rice", Name: "rice", Elements: alchemy.ElementalVector{Fire: 0.1, Water: 0.3, Earth: 0.5, Air: 0.1}},
	}}
}

func testDefinition() *RecipeDefinition {
	return &RecipeDefinition{
		ID:   "r1",
		Name: "Chili Rice",
		Ingredients: []RecipeIngredient{
			{IngredientID: "chili", Quantity: 50, Unit: "g"},
			{IngredientID: "rice", Quantity: 200, Unit: "g"},
		},
		Methods: []string{"boiling"},
	}
}

func TestPipelineComputeWithoutTiming(t *testing.T) {
	p := NewPipeline(testSource(), nil, nil, nil, PipelineConfig{})

	props, err := p.Compute(context.Background(), testDefinition())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if !props.Elements.IsNormalized() {
		t.Fatalf("Elements sum = %v, want 1.0", props.Elements.Sum())
	}
	if props.HasTiming {
		t.Fatal("HasTiming set without positions")
	}
	if props.Alchemy != nil {
		t.Fatal("Alchemy present without positions")
	}
	if props.Thermo != nil {
		t.Fatal("Thermo present without positions")
	}
	if props.Version == "" {
		t.Fatal("Version not assigned")
	}
}

func TestPipelineComputeWithTiming(t *testing.T) {
	p := NewPipeline(testSource(), nil, nil, nil, PipelineConfig{})

	def := testDefinition()
	def.Positions = astro.PlanetaryPositions{
		astro.Sun:     {Sign: astro.Gemini},
		astro.Moon:    {Sign: astro.Leo},
		astro.Mercury: {Sign: astro.Taurus},
	}

	props, err := p.Compute(context.Background(), def)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if !props.HasTiming {
		t.Fatal("HasTiming not set with positions")
	}
	if props.Alchemy == nil {
		t.Fatal("Alchemy absent with positions")
	}
	want := alchemy.AlchemicalCounts{Spirit: 2, Essence: 1, Matter: 1, Substance: 1}
	if *props.Alchemy != want {
		t.Fatalf("Alchemy = %+v, want %+v", *props.Alchemy, want)
	}
	if props.Thermo == nil {
		t.Fatal("Thermo absent with positions")
	}
	if props.Thermo.Kalchm <= 0 {
		t.Fatalf("Kalchm = %v, want positive", props.Thermo.Kalchm)
	}
}

func TestPipelineValidationError(t *testing.T) {
	p := NewPipeline(testSource(), nil, nil, nil, PipelineConfig{})

	if _, err := p.Compute(context.Background(), &RecipeDefinition{ID: "r1"}); err == nil {
		t.Fatal("Compute accepted a definition without a name")
	}
}

func TestPipelineUnresolvedIngredientDegrades(t *testing.T) {
	p := NewPipeline(testSource(), nil, nil, nil, PipelineConfig{})

	def := &RecipeDefinition{
		ID:   "r1",
		Name: "Mystery Stew",
		Ingredients: []RecipeIngredient{
			{IngredientID: "unobtainium", Quantity: 100},
		},
	}

	props, err := p.Compute(context.Background(), def)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if props.Elements != alchemy.UniformVector() {
		t.Fatalf("Elements = %+v, want uniform fallback", props.Elements)
	}
}

func TestPipelineCacheReuse(t *testing.T) {
	source := testSource()
	results := cache.New(cache.NewHotCache(16), nil)
	p := NewPipeline(source, nil, nil, results, PipelineConfig{CacheTTL: time.Minute})

	first, err := p.Compute(context.Background(), testDefinition())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	callsAfterFirst := source.calls.Load()

	second, err := p.Compute(context.Background(), testDefinition())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if source.calls.Load() != callsAfterFirst {
		t.Fatal("cached recompute resolved ingredients again")
	}
	if first.Version != second.Version {
		t.Fatalf("cached result has new version %s, want %s", second.Version, first.Version)
	}
}

func TestPipelineComputeAll(t *testing.T) {
	p := NewPipeline(testSource(), nil, nil, nil, PipelineConfig{})

	defs := []*RecipeDefinition{
		testDefinition(),
		{ID: "bad"}, // fails validation
		testDefinition(),
	}
	defs[2].ID = "r2"

	out, err := p.ComputeAll(context.Background(), defs)
	if err != nil {
		t.Fatalf("ComputeAll: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0] == nil || out[2] == nil {
		t.Fatal("valid recipes missing from batch output")
	}
	if out[0].RecipeID != "r1" || out[2].RecipeID != "r2" {
		t.Fatalf("order not preserved: %s, %s", out[0].RecipeID, out[2].RecipeID)
	}
	if out[1] != nil {
		t.Fatal("invalid recipe produced output")
	}
}
