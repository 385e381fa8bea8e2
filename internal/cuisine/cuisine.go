// Package cuisine aggregates computed recipe records into per-cuisine
// statistical profiles: weighted property means, sample variances,
// z-scores against the global recipe baseline, and the signature
// properties that make a cuisine statistically distinctive.
package cuisine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

// SignificanceThreshold is the |z| above which a property counts as a
// cuisine signature.
const SignificanceThreshold = 1.5

// patternShare is the fraction of timed recipes a placement must appear
// in to count as recurring.
const patternShare = 0.5

// Signature is one statistically distinctive property of a cuisine.
type Signature struct {
	Property string  `json:"property"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	ZScore   float64 `json:"zScore"`
}

// PlanetaryPattern is a planet-in-sign placement recurring across a
// cuisine's timed recipes.
type PlanetaryPattern struct {
	Planet astro.Planet `json:"planet"`
	Sign   astro.Sign   `json:"sign"`
	Share  float64      `json:"share"`
}

// ComputedProperties is the aggregate profile of one cuisine.
type ComputedProperties struct {
	Cuisine     string                   `json:"cuisine"`
	Version     string                   `json:"version"`
	RecipeCount int                      `json:"recipeCount"`
	Elements    alchemy.ElementalVector  `json:"elements"`
	Stats       map[string]PropertyStats `json:"stats"`
	Signatures  []Signature              `json:"signatures"`
	Patterns    []PlanetaryPattern       `json:"patterns"`
	ComputedAt  time.Time                `json:"computedAt"`
}

// Baseline holds the global distribution every cuisine is scored
// against. Refreshed periodically from the full recipe corpus.
type Baseline struct {
	Stats       map[string]PropertyStats `json:"stats"`
	RecipeCount int                      `json:"recipeCount"`
	ComputedAt  time.Time                `json:"computedAt"`
}

// Age returns how long ago the baseline was computed.
func (b *Baseline) Age() time.Duration {
	return time.Since(b.ComputedAt)
}

// Aggregator computes cuisine profiles. Partitioned aggregation runs
// property sums concurrently when the record set is large.
type Aggregator struct {
	partitionSize int
}

// NewAggregator returns an aggregator that splits work into partitions
// of the given size; zero uses the default of 256 records.
func NewAggregator(partitionSize int) *Aggregator {
	if partitionSize <= 0 {
		partitionSize = 256
	}
	return &Aggregator{partitionSize: partitionSize}
}

// collect computes merged per-property partials over records,
// partitioned map-reduce style.
func (a *Aggregator) collect(ctx context.Context, records []*recipe.RecipeComputedProperties) (map[string]partial, error) {
	if len(records) <= a.partitionSize {
		return accumulate(records), nil
	}

	var partitions [][]*recipe.RecipeComputedProperties
	for start := 0; start < len(records); start += a.partitionSize {
		end := start + a.partitionSize
		if end > len(records) {
			end = len(records)
		}
		partitions = append(partitions, records[start:end])
	}

	parts := make([]map[string]partial, len(partitions))
	g, _ := errgroup.WithContext(ctx)
	for i, part := range partitions {
		i, part := i, part
		g.Go(func() error {
			parts[i] = accumulate(part)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeAll(parts), nil
}

// ComputeBaseline builds the global distribution from the entire corpus.
func (a *Aggregator) ComputeBaseline(ctx context.Context, corpus []*recipe.RecipeComputedProperties) (*Baseline, error) {
	start := time.Now()
	merged, err := a.collect(ctx, corpus)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]PropertyStats, len(PropertyNames))
	count := 0
	for _, name := range PropertyNames {
		s := merged[name].stats()
		stats[name] = s
		if s.Count > count {
			count = s.Count
		}
	}

	metrics.ObserveCompute("baseline", time.Since(start))
	return &Baseline{Stats: stats, RecipeCount: count, ComputedAt: time.Now().UTC()}, nil
}

// Aggregate profiles one cuisine's records against the global baseline.
// A nil baseline skips z-scores and signatures, leaving means and
// variances intact.
func (a *Aggregator) Aggregate(ctx context.Context, name string, records []*recipe.RecipeComputedProperties, baseline *Baseline) (*ComputedProperties, error) {
	start := time.Now()

	merged, err := a.collect(ctx, records)
	if err != nil {
		return nil, err
	}

	out := &ComputedProperties{
		Cuisine:    name,
		Version:    uuid.NewString(),
		Stats:      make(map[string]PropertyStats, len(PropertyNames)),
		ComputedAt: time.Now().UTC(),
	}
	for _, rec := range records {
		if rec != nil {
			out.RecipeCount++
		}
	}

	for _, prop := range PropertyNames {
		out.Stats[prop] = merged[prop].stats()
	}

	out.Elements = alchemy.ElementalVector{
		Fire:  out.Stats["Fire"].Mean,
		Water: out.Stats["Water"].Mean,
		Earth: out.Stats["Earth"].Mean,
		Air:   out.Stats["Air"].Mean,
	}.Normalized()

	if baseline != nil {
		out.Signatures = signatures(out.Stats, baseline)
	}
	out.Patterns = patterns(records)

	metrics.ObserveCompute("cuisine", time.Since(start))
	return out, nil
}

// signatures scores each property against the baseline and keeps the
// significant ones, strongest first.
func signatures(stats map[string]PropertyStats, baseline *Baseline) []Signature {
	var out []Signature
	for _, prop := range PropertyNames {
		s := stats[prop]
		if s.Count == 0 {
			continue
		}
		base, ok := baseline.Stats[prop]
		if !ok || base.Count == 0 {
			continue
		}
		z := zScore(s.Mean, base.Mean, base.Variance)
		if math.Abs(z) > SignificanceThreshold {
			out = append(out, Signature{Property: prop, Mean: s.Mean, Variance: s.Variance, ZScore: z})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		zi, zj := math.Abs(out[i].ZScore), math.Abs(out[j].ZScore)
		if zi != zj {
			return zi > zj
		}
		return out[i].Property < out[j].Property
	})
	return out
}

// patterns finds planet-in-sign placements present in more than half of
// the timed records.
func patterns(records []*recipe.RecipeComputedProperties) []PlanetaryPattern {
	type placement struct {
		planet astro.Planet
		sign   astro.Sign
	}

	counts := make(map[placement]int)
	timed := 0
	for _, rec := range records {
		if rec == nil || len(rec.Positions) == 0 {
			continue
		}
		timed++
		for planet, pos := range rec.Positions {
			counts[placement{planet, pos.Sign}]++
		}
	}
	if timed == 0 {
		return nil
	}

	var out []PlanetaryPattern
	for pl, n := range counts {
		share := float64(n) / float64(timed)
		if share > patternShare {
			out = append(out, PlanetaryPattern{Planet: pl.planet, Sign: pl.sign, Share: share})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		if out[i].Planet != out[j].Planet {
			return out[i].Planet < out[j].Planet
		}
		return out[i].Sign < out[j].Sign
	})
	return out
}
