package sample

import (
	"testing"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg)
	b := Generate(cfg)

	if len(a.Ingredients) != len(b.Ingredients) || len(a.Recipes) != len(b.Recipes) {
		t.Fatalf("corpus sizes differ: %d/%d vs %d/%d",
			len(a.Ingredients), len(a.Recipes), len(b.Ingredients), len(b.Recipes))
	}
	for i := range a.Ingredients {
		if a.Ingredients[i].ID != b.Ingredients[i].ID || a.Ingredients[i].Elements != b.Ingredients[i].Elements {
			t.Fatalf("ingredient %d differs between runs: %+v vs %+v", i, a.Ingredients[i], b.Ingredients[i])
		}
	}
	for i := range a.Recipes {
		if a.Recipes[i].ID != b.Recipes[i].ID {
			t.Fatalf("recipe %d differs between runs: %s vs %s", i, a.Recipes[i].ID, b.Recipes[i].ID)
		}
		if a.Recipes[i].ContentHash() != b.Recipes[i].ContentHash() {
			t.Fatalf("recipe %s content differs between runs", a.Recipes[i].ID)
		}
	}
}

func TestGenerateShape(t *testing.T) {
	cfg := SmallTestConfig()
	corpus := Generate(cfg)

	if len(corpus.Ingredients) != cfg.Ingredients {
		t.Fatalf("ingredients = %d, want %d", len(corpus.Ingredients), cfg.Ingredients)
	}
	if len(corpus.Recipes) != cfg.Cuisines*cfg.Recipes {
		t.Fatalf("recipes = %d, want %d", len(corpus.Recipes), cfg.Cuisines*cfg.Recipes)
	}

	perCuisine := make(map[string]int)
	for _, def := range corpus.Recipes {
		perCuisine[def.Cuisine]++
	}
	if len(perCuisine) != cfg.Cuisines {
		t.Fatalf("distinct cuisines = %d, want %d", len(perCuisine), cfg.Cuisines)
	}
	for cuisine, n := range perCuisine {
		if n != cfg.Recipes {
			t.Fatalf("cuisine %s has %d recipes, want %d", cuisine, n, cfg.Recipes)
		}
	}
}

func TestGeneratedRecordsValidate(t *testing.T) {
	corpus := Generate(SmallTestConfig())

	for _, rec := range corpus.Ingredients {
		if err := rec.Validate(); err != nil {
			t.Fatalf("ingredient %s invalid: %v", rec.ID, err)
		}
	}

	methods := recipe.DefaultMethodTable()
	seen := make(map[string]bool)
	for _, def := range corpus.Recipes {
		if err := def.Validate(); err != nil {
			t.Fatalf("recipe %s invalid: %v", def.ID, err)
		}
		if seen[def.ID] {
			t.Fatalf("duplicate recipe id %s", def.ID)
		}
		seen[def.ID] = true

		if len(def.Ingredients) < 3 || len(def.Ingredients) > 8 {
			t.Fatalf("recipe %s has %d ingredients, want 3..8", def.ID, len(def.Ingredients))
		}
		items := make(map[string]bool)
		for _, item := range def.Ingredients {
			if items[item.IngredientID] {
				t.Fatalf("recipe %s repeats ingredient %s", def.ID, item.IngredientID)
			}
			items[item.IngredientID] = true
			if item.Quantity <= 0 {
				t.Fatalf("recipe %s ingredient %s has quantity %v", def.ID, item.IngredientID, item.Quantity)
			}
		}

		for _, m := range def.Methods {
			if _, ok := methods[m]; !ok {
				t.Fatalf("recipe %s uses unknown method %s", def.ID, m)
			}
		}

		// Timing travels as a pair: positions and a preparation time.
		if (def.Positions == nil) != (def.PreparedAt == nil) {
			t.Fatalf("recipe %s has partial timing: positions=%v preparedAt=%v",
				def.ID, def.Positions != nil, def.PreparedAt != nil)
		}
	}
}

type countingWriter struct {
	ingredients int
	recipes     int
}

func (w *countingWriter) SaveIngredients(records []*recipe.IngredientRecord) error {
	w.ingredients = len(records)
	return nil
}

func (w *countingWriter) SaveRecipes(defs []*recipe.RecipeDefinition) error {
	w.recipes = len(defs)
	return nil
}

func TestPopulateWritesCorpus(t *testing.T) {
	cfg := SmallTestConfig()
	w := &countingWriter{}

	corpus, err := Populate(w, cfg)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if w.ingredients != len(corpus.Ingredients) {
		t.Fatalf("writer saw %d ingredients, want %d", w.ingredients, len(corpus.Ingredients))
	}
	if w.recipes != len(corpus.Recipes) {
		t.Fatalf("writer saw %d recipes, want %d", w.recipes, len(corpus.Recipes))
	}
}
