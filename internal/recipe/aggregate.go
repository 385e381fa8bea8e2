package recipe

import (
	"math"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
)

// Aggregation defaults. Quantities scale logarithmically so doubling an
// ingredient never doubles its influence.
const (
	DefaultReferenceQuantity = 100.0
	DefaultMaxQuantity       = 1000.0
	DefaultIngredientWeight  = 0.7
	DefaultZodiacWeight      = 0.3
)

// AggregatorConfig tunes quantity scaling and the ingredient/zodiac
// blend. Zero values fall back to the defaults.
type AggregatorConfig struct {
	ReferenceQuantity float64 `yaml:"referenceQuantity"`
	MaxQuantity       float64 `yaml:"maxQuantity"`
	IngredientWeight  float64 `yaml:"ingredientWeight"`
	ZodiacWeight      float64 `yaml:"zodiacWeight"`
}

func (c AggregatorConfig) withDefaults() AggregatorConfig {
	if c.ReferenceQuantity <= 0 {
		c.ReferenceQuantity = DefaultReferenceQuantity
	}
	if c.MaxQuantity <= 0 {
		c.MaxQuantity = DefaultMaxQuantity
	}
	if c.IngredientWeight <= 0 {
		c.IngredientWeight = DefaultIngredientWeight
	}
	if c.ZodiacWeight <= 0 {
		c.ZodiacWeight = DefaultZodiacWeight
	}
	return c
}

// QuantityScale maps a raw quantity to its diminishing contribution
// factor: ln(1 + q/R) / ln(1 + Qmax/R). The factor passes 1.0 at Qmax
// and keeps growing slowly beyond it; there is no hard ceiling.
func QuantityScale(quantity, reference, max float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return math.Log(1+quantity/reference) / math.Log(1+max/reference)
}

// ResolvedIngredient pairs a catalog record with the quantity the recipe
// actually uses.
type ResolvedIngredient struct {
	Record   *IngredientRecord
	Quantity float64
}

// IngredientElemental accumulates quantity-scaled ingredient vectors and
// normalizes the result. No ingredients at all produce the uniform
// vector rather than an error.
func IngredientElemental(items []ResolvedIngredient, cfg AggregatorConfig) alchemy.ElementalVector {
	cfg = cfg.withDefaults()

	var acc alchemy.ElementalVector
	for _, item := range items {
		if item.Record == nil {
			continue
		}
		s := QuantityScale(item.Quantity, cfg.ReferenceQuantity, cfg.MaxQuantity)
		acc = acc.Add(item.Record.Elements.Scale(s))
	}
	return acc.Normalized()
}

// Combine blends the ingredient vector with the zodiac vector. Without
// zodiac data the ingredient vector stands alone at full weight.
func Combine(ingredient, zodiac alchemy.ElementalVector, hasZodiac bool, cfg AggregatorConfig) alchemy.ElementalVector {
	if !hasZodiac {
		return ingredient.Normalized()
	}
	cfg = cfg.withDefaults()
	blended := ingredient.Scale(cfg.IngredientWeight).Add(zodiac.Scale(cfg.ZodiacWeight))
	return blended.Normalized()
}
