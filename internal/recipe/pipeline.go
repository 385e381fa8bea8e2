package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/thermo"
)

// IngredientSource resolves ingredient references against the catalog.
type IngredientSource interface {
	Ingredient(ctx context.Context, id string) (*IngredientRecord, error)
}

// PipelineConfig tunes the computation pipeline.
type PipelineConfig struct {
	Aggregator AggregatorConfig
	Weights    alchemy.PlanetWeights
	CacheTTL   time.Duration
	Parallel   int
}

// Pipeline orchestrates aggregation, method transforms, alchemical
// derivation and thermodynamics for one recipe, caching results by
// content hash so unchanged definitions never recompute.
type Pipeline struct {
	ingredients IngredientSource
	transformer *Transformer
	table       alchemy.AlchemyTable
	results     *cache.ResultCache
	cfg         PipelineConfig
}

// NewPipeline wires the pipeline. results may be nil to disable caching;
// a nil transformer or table uses the defaults.
func NewPipeline(ingredients IngredientSource, transformer *Transformer, table alchemy.AlchemyTable, results *cache.ResultCache, cfg PipelineConfig) *Pipeline {
	if transformer == nil {
		transformer = NewTransformer(nil)
	}
	if table == nil {
		table = alchemy.DefaultAlchemyTable()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 8
	}
	return &Pipeline{
		ingredients: ingredients,
		transformer: transformer,
		table:       table,
		results:     results,
		cfg:         cfg,
	}
}

// Compute returns the computed properties for a definition, served from
// cache when the content hash matches a previous computation.
func (p *Pipeline) Compute(ctx context.Context, def *RecipeDefinition) (*RecipeComputedProperties, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", def.ID, err)
	}

	if p.results == nil {
		return p.compute(ctx, def)
	}

	payload, err := p.results.GetOrCompute(ctx, "recipe", def.ContentHash(), p.cfg.CacheTTL, func(ctx context.Context) ([]byte, error) {
		props, err := p.compute(ctx, def)
		if err != nil {
			return nil, err
		}
		return json.Marshal(props)
	})
	if err != nil {
		return nil, err
	}

	var props RecipeComputedProperties
	if err := json.Unmarshal(payload, &props); err != nil {
		return nil, fmt.Errorf("recipe %s: decode cached properties: %w", def.ID, err)
	}
	return &props, nil
}

func (p *Pipeline) compute(ctx context.Context, def *RecipeDefinition) (*RecipeComputedProperties, error) {
	start := time.Now()

	resolved := make([]ResolvedIngredient, 0, len(def.Ingredients))
	for _, item := range def.Ingredients {
		rec, err := p.ingredients.Ingredient(ctx, item.IngredientID)
		if err != nil {
			slog.Warn("ingredient unresolved, skipping", "recipe", def.ID, "ingredient", item.IngredientID, "error", err)
			continue
		}
		resolved = append(resolved, ResolvedIngredient{Record: rec, Quantity: item.Quantity})
	}

	ingredientVec := IngredientElemental(resolved, p.cfg.Aggregator)

	hasTiming := len(def.Positions) > 0
	combined := ingredientVec
	if hasTiming {
		zodiacVec := alchemy.ZodiacElemental(def.Positions, p.cfg.Weights)
		combined = Combine(ingredientVec, zodiacVec, true, p.cfg.Aggregator)
	}

	final := p.transformer.Apply(combined, def.Methods)

	props := &RecipeComputedProperties{
		RecipeID:   def.ID,
		Version:    uuid.NewString(),
		Elements:   final,
		HasTiming:  hasTiming,
		Popularity: def.Popularity,
		ComputedAt: time.Now().UTC(),
	}

	if hasTiming {
		counts := p.table.Derive(def.Positions)
		m := thermo.Compute(counts, final)
		props.Alchemy = &counts
		props.Thermo = &m
		props.Positions = def.Positions.Clone()
	}

	metrics.ObserveCompute("recipe", time.Since(start))
	return props, nil
}

// ComputeAll computes properties for a batch of definitions
// concurrently, preserving input order. Individual recipe failures are
// logged and leave a nil slot rather than failing the batch.
func (p *Pipeline) ComputeAll(ctx context.Context, defs []*RecipeDefinition) ([]*RecipeComputedProperties, error) {
	out := make([]*RecipeComputedProperties, len(defs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Parallel)

	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			props, err := p.Compute(gCtx, def)
			if err != nil {
				slog.Warn("recipe computation failed", "recipe", def.ID, "error", err)
				return nil
			}
			out[i] = props
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
