// Package recipe turns recipe definitions into computed culinary
// properties: the final elemental vector after ingredient aggregation
// and cooking-method transforms, plus alchemical counts and
// thermodynamic metrics whenever preparation timing is known.
package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/thermo"
)

var validate = validator.New()

// ErrElementsNotNormalized rejects catalog data whose elemental vector
// does not sum to 1.0 within tolerance.
var ErrElementsNotNormalized = errors.New("recipe: elemental vector not normalized")

// IngredientRecord is immutable reference data from the ingredient
// catalog: identity, category, a normalized elemental vector and
// optional sign affinities.
type IngredientRecord struct {
	ID         string                  `json:"id" validate:"required"`
	Name       string                  `json:"name" validate:"required"`
	Category   string                  `json:"category"`
	Elements   alchemy.ElementalVector `json:"elements"`
	Affinities []astro.Sign            `json:"affinities,omitempty"`
}

// Validate checks required fields and the elemental invariant.
func (r *IngredientRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Elements.IsNormalized() {
		return ErrElementsNotNormalized
	}
	return nil
}

// RecipeIngredient references a catalog ingredient with its quantity.
type RecipeIngredient struct {
	IngredientID string  `json:"ingredientId" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit"`
}

// RecipeDefinition is the external collaborator's description of a dish.
// Positions capture the time of preparation when known; without them the
// computed record carries no alchemical or thermodynamic data.
type RecipeDefinition struct {
	ID          string                   `json:"id" validate:"required"`
	Name        string                   `json:"name" validate:"required"`
	Cuisine     string                   `json:"cuisine"`
	Ingredients []RecipeIngredient       `json:"ingredients" validate:"dive"`
	Methods     []string                 `json:"methods,omitempty"`
	Positions   astro.PlanetaryPositions `json:"positions,omitempty"`
	PreparedAt  *time.Time               `json:"preparedAt,omitempty"`
	Popularity  float64                  `json:"popularity,omitempty" validate:"gte=0"`
}

// Validate checks field constraints and any supplied positions.
func (d *RecipeDefinition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if d.Positions != nil {
		if err := d.Positions.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContentHash fingerprints everything that affects the computed result:
// ingredient order, quantities, units, method order and timing data. Two
// definitions with equal hashes compute identical properties.
func (d *RecipeDefinition) ContentHash() string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	enc.Encode(d.Ingredients)
	enc.Encode(d.Methods)
	if d.Positions != nil {
		keys := make([]string, 0, len(d.Positions))
		for p := range d.Positions {
			keys = append(keys, string(p))
		}
		sort.Strings(keys)
		for _, k := range keys {
			enc.Encode(k)
			enc.Encode(d.Positions[astro.Planet(k)])
		}
	}
	if d.PreparedAt != nil {
		enc.Encode(d.PreparedAt.UTC())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RecipeComputedProperties is the derived record for one recipe. Alchemy
// and Thermo are nil when the definition carried no planetary positions;
// consumers must check rather than assume zero values. Positions echo
// the preparation timing so downstream aggregation can detect recurring
// planetary placements without re-reading definitions.
type RecipeComputedProperties struct {
	RecipeID   string                    `json:"recipeId"`
	Version    string                    `json:"version"`
	Elements   alchemy.ElementalVector   `json:"elements"`
	Alchemy    *alchemy.AlchemicalCounts `json:"alchemy,omitempty"`
	Thermo     *thermo.Metrics           `json:"thermo,omitempty"`
	Positions  astro.PlanetaryPositions  `json:"positions,omitempty"`
	HasTiming  bool                      `json:"hasTiming"`
	Popularity float64                   `json:"popularity,omitempty"`
	ComputedAt time.Time                 `json:"computedAt"`
}
