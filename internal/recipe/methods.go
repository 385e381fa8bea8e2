package recipe

import (
	"log/slog"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
)

// MethodModifier is one cooking method's multiplicative effect on each
// element. Values above 1.0 amplify, below 1.0 dampen.
type MethodModifier struct {
	Fire  float64 `yaml:"fire" json:"fire"`
	Water float64 `yaml:"water" json:"water"`
	Earth float64 `yaml:"earth" json:"earth"`
	Air   float64 `yaml:"air" json:"air"`
}

// MethodTable maps method identifiers to their modifiers.
type MethodTable map[string]MethodModifier

// DefaultMethodTable returns modifiers for the common cooking methods.
// Dry-heat methods feed Fire, wet methods feed Water, slow enclosed
// methods feed Earth.
func DefaultMethodTable() MethodTable {
	return MethodTable{
		"grilling":   {Fire: 1.4, Water: 0.6, Earth: 0.9, Air: 1.1},
		"roasting":   {Fire: 1.3, Water: 0.7, Earth: 1.1, Air: 1.0},
		"baking":     {Fire: 1.2, Water: 0.8, Earth: 1.2, Air: 0.9},
		"frying":     {Fire: 1.35, Water: 0.6, Earth: 0.9, Air: 1.15},
		"smoking":    {Fire: 1.25, Water: 0.65, Earth: 1.0, Air: 1.25},
		"steaming":   {Fire: 0.7, Water: 1.4, Earth: 0.9, Air: 1.0},
		"boiling":    {Fire: 0.8, Water: 1.5, Earth: 0.9, Air: 0.8},
		"poaching":   {Fire: 0.75, Water: 1.35, Earth: 0.95, Air: 0.95},
		"braising":   {Fire: 1.0, Water: 1.2, Earth: 1.15, Air: 0.75},
		"fermenting": {Fire: 0.85, Water: 1.1, Earth: 1.2, Air: 0.95},
		"pickling":   {Fire: 0.8, Water: 1.3, Earth: 1.05, Air: 0.9},
		"raw":        {Fire: 0.9, Water: 1.05, Earth: 1.0, Air: 1.1},
	}
}

// Transformer applies cooking-method modifiers to an elemental vector.
type Transformer struct {
	table MethodTable
}

// NewTransformer builds a transformer over the given table; a nil table
// uses the defaults.
func NewTransformer(table MethodTable) *Transformer {
	if table == nil {
		table = DefaultMethodTable()
	}
	return &Transformer{table: table}
}

// Known reports whether a method identifier has a modifier row.
func (t *Transformer) Known(method string) bool {
	_, ok := t.table[method]
	return ok
}

// Apply multiplies each method's modifiers into the vector in listed
// order, clamping components to [0, 1] between steps, then renormalizes.
// The clamp is what makes composition order-dependent: grill-then-steam
// lands elsewhere than steam-then-grill once a component saturates.
// Unknown methods are skipped. An empty method list returns the input
// renormalized, nothing more.
func (t *Transformer) Apply(v alchemy.ElementalVector, methods []string) alchemy.ElementalVector {
	for _, m := range methods {
		mod, ok := t.table[m]
		if !ok {
			slog.Warn("unknown cooking method skipped", "method", m)
			continue
		}
		v = alchemy.ElementalVector{
			Fire:  v.Fire * mod.Fire,
			Water: v.Water * mod.Water,
			Earth: v.Earth * mod.Earth,
			Air:   v.Air * mod.Air,
		}.Clamped()
	}
	return v.Normalized()
}
