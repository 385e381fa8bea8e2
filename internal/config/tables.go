package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

// LoadMethodTable reads a cooking-method modifier table from a YAML file
// mapping method name to per-element multipliers.
func LoadMethodTable(path string) (recipe.MethodTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read method table %s: %w", path, err)
	}

	var table recipe.MethodTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse method table %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("method table %s is empty", path)
	}
	for name, mod := range table {
		if mod.Fire < 0 || mod.Water < 0 || mod.Earth < 0 || mod.Air < 0 {
			return nil, fmt.Errorf("method table %s: method %q has a negative modifier", path, name)
		}
	}
	return table, nil
}

// WriteDefaultMethodTable writes the built-in modifier table to path so
// operators have a complete file to edit.
func WriteDefaultMethodTable(path string) error {
	data, err := yaml.Marshal(recipe.DefaultMethodTable())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write method table %s: %w", path, err)
	}
	return nil
}

// LoadPlanetWeights reads a planet-weight table from a YAML file mapping
// planet name to weight.
func LoadPlanetWeights(path string) (alchemy.PlanetWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read planet weights %s: %w", path, err)
	}

	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse planet weights %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("planet weights %s is empty", path)
	}

	out := make(alchemy.PlanetWeights, len(raw))
	for name, w := range raw {
		p := astro.Planet(name)
		if !p.Valid() {
			return nil, fmt.Errorf("planet weights %s: unknown planet %q", path, name)
		}
		if w < 0 {
			return nil, fmt.Errorf("planet weights %s: planet %q has a negative weight", path, name)
		}
		out[p] = w
	}
	return out, nil
}
