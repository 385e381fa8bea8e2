// Package sample generates a deterministic seeded recipe corpus for the
// catalog. Each cuisine samples its own region of four layered noise
// fields, so its recipes lean on aligned ingredients, methods and
// preparation charts and the aggregate statistics carry detectable
// signatures.
package sample

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

// GenConfig holds corpus generation parameters.
type GenConfig struct {
	Cuisines    int   // number of cuisines
	Recipes     int   // recipes per cuisine
	Ingredients int   // catalog size
	Seed        int64 // random seed (0 = random)
}

// DefaultGenConfig returns the corpus shape for a realistic local setup.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Cuisines:    6,
		Recipes:     40,
		Ingredients: 72,
		Seed:        0,
	}
}

// SmallTestConfig returns a tiny corpus for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Cuisines:    3,
		Recipes:     12,
		Ingredients: 30,
		Seed:        42,
	}
}

// corpusEpoch anchors generated preparation times so a seeded corpus is
// reproducible regardless of wall clock.
var corpusEpoch = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// Corpus is a generated catalog ready to persist.
type Corpus struct {
	Ingredients []*recipe.IngredientRecord
	Recipes     []*recipe.RecipeDefinition
}

// Generate creates a complete corpus from the configuration.
func Generate(cfg GenConfig) *Corpus {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// One noise layer per element; ingredients and cuisines sample the
	// same fields at different coordinates.
	g := &generator{
		cfg: cfg,
		layers: [4]opensimplex.Noise{
			opensimplex.NewNormalized(seed),
			opensimplex.NewNormalized(seed + 1),
			opensimplex.NewNormalized(seed + 2),
			opensimplex.NewNormalized(seed + 3),
		},
		rng: rand.New(rand.NewSource(seed + 100)),
	}
	return g.run()
}

type generator struct {
	cfg    GenConfig
	layers [4]opensimplex.Noise
	rng    *rand.Rand
}

func (g *generator) run() *Corpus {
	corpus := &Corpus{Ingredients: g.makeIngredients()}

	for c := 0; c < g.cfg.Cuisines; c++ {
		name := cuisineName(c)
		// Ingredients sample the fields at y=0; cuisines sit well apart
		// on the y axis so their biases decorrelate.
		bias := g.elementsAt(0, float64(c+1)*3.0, 3.0)
		repertoire := methodRepertoire(bias)

		for r := 0; r < g.cfg.Recipes; r++ {
			corpus.Recipes = append(corpus.Recipes, g.makeRecipe(name, bias, repertoire, corpus.Ingredients, r))
		}
	}
	return corpus
}

// elementsAt samples the four element fields and sharpens the result so
// dominant elements stand out against the noise floor.
func (g *generator) elementsAt(x, y, sharpness float64) alchemy.ElementalVector {
	v := alchemy.ElementalVector{
		Fire:  octaveNoise(g.layers[0], x, y, 3, 0.35, 0.5),
		Water: octaveNoise(g.layers[1], x, y, 3, 0.35, 0.5),
		Earth: octaveNoise(g.layers[2], x, y, 3, 0.35, 0.5),
		Air:   octaveNoise(g.layers[3], x, y, 3, 0.35, 0.5),
	}
	return alchemy.ElementalVector{
		Fire:  math.Pow(v.Fire, sharpness),
		Water: math.Pow(v.Water, sharpness),
		Earth: math.Pow(v.Earth, sharpness),
		Air:   math.Pow(v.Air, sharpness),
	}.Normalized()
}

func (g *generator) makeIngredients() []*recipe.IngredientRecord {
	out := make([]*recipe.IngredientRecord, 0, g.cfg.Ingredients)
	for i := 0; i < g.cfg.Ingredients; i++ {
		entry := ingredientPool[i%len(ingredientPool)]
		name, id := entry.name, slug(entry.name)
		if i >= len(ingredientPool) {
			variant := i/len(ingredientPool) + 1
			name = fmt.Sprintf("%s %d", entry.name, variant)
			id = fmt.Sprintf("%s-%d", id, variant)
		}

		elements := g.elementsAt(float64(i), 0, 2.0)
		rec := &recipe.IngredientRecord{
			ID:       id,
			Name:     name,
			Category: entry.category,
			Elements: elements,
		}
		if g.rng.Float64() < 0.5 {
			rec.Affinities = g.pickSigns(elements.Dominant(), 1+g.rng.Intn(2))
		}
		out = append(out, rec)
	}
	return out
}

func (g *generator) makeRecipe(cuisine string, bias alchemy.ElementalVector, repertoire []string, pool []*recipe.IngredientRecord, idx int) *recipe.RecipeDefinition {
	picked := g.pickIngredients(pool, bias, 3+g.rng.Intn(6))

	items := make([]recipe.RecipeIngredient, 0, len(picked))
	for _, rec := range picked {
		q, unit := g.quantityFor(rec.Category)
		items = append(items, recipe.RecipeIngredient{IngredientID: rec.ID, Quantity: q, Unit: unit})
	}

	nMethods := 1 + g.rng.Intn(3)
	if nMethods > len(repertoire) {
		nMethods = len(repertoire)
	}
	reps := append([]string(nil), repertoire...)
	g.rng.Shuffle(len(reps), func(i, j int) { reps[i], reps[j] = reps[j], reps[i] })

	form := dishForms[g.rng.Intn(len(dishForms))]
	main := picked[0]

	def := &recipe.RecipeDefinition{
		ID:          fmt.Sprintf("%s-%s-%s-%02d", cuisine, main.ID, form, idx+1),
		Name:        fmt.Sprintf("%s %s %s", title(cuisine), main.Name, title(form)),
		Cuisine:     cuisine,
		Ingredients: items,
		Methods:     reps[:nMethods],
		Popularity:  math.Round(g.rng.Float64()*100) / 100,
	}

	// Most recipes carry preparation timing; the rest stay
	// elemental-only, like real catalog data.
	if g.rng.Float64() < 0.7 {
		at := corpusEpoch.Add(-time.Duration(g.rng.Intn(365*24)) * time.Hour)
		def.PreparedAt = &at
		def.Positions = g.positions(bias)
	}
	return def
}

// pickIngredients draws n distinct ingredients, weighted toward those
// aligned with the cuisine bias so each cuisine leans on its own corner
// of the catalog.
func (g *generator) pickIngredients(pool []*recipe.IngredientRecord, bias alchemy.ElementalVector, n int) []*recipe.IngredientRecord {
	if n > len(pool) {
		n = len(pool)
	}

	weights := make([]float64, len(pool))
	for i, rec := range pool {
		dot := rec.Elements.Fire*bias.Fire + rec.Elements.Water*bias.Water +
			rec.Elements.Earth*bias.Earth + rec.Elements.Air*bias.Air
		weights[i] = math.Pow(dot, 3) + 1e-3
	}

	out := make([]*recipe.IngredientRecord, 0, n)
	taken := make([]bool, len(pool))
	for len(out) < n {
		total := 0.0
		for i, w := range weights {
			if !taken[i] {
				total += w
			}
		}

		target := g.rng.Float64() * total
		picked := -1
		for i, w := range weights {
			if taken[i] {
				continue
			}
			target -= w
			if target <= 0 {
				picked = i
				break
			}
		}
		if picked == -1 {
			for i := range pool {
				if !taken[i] {
					picked = i
					break
				}
			}
		}

		taken[picked] = true
		out = append(out, pool[picked])
	}
	return out
}

type quantityRange struct {
	lo, hi float64
	unit   string
}

var quantityRanges = map[string]quantityRange{
	"spice":     {2, 15, "g"},
	"herb":      {5, 30, "g"},
	"vegetable": {50, 400, "g"},
	"protein":   {100, 500, "g"},
	"grain":     {60, 300, "g"},
	"dairy":     {20, 200, "g"},
	"fat":       {10, 90, "ml"},
	"aromatic":  {5, 40, "g"},
	"sweetener": {5, 50, "g"},
}

func (g *generator) quantityFor(category string) (float64, string) {
	r, ok := quantityRanges[category]
	if !ok {
		r = quantityRange{30, 200, "g"}
	}
	q := r.lo + g.rng.Float64()*(r.hi-r.lo)
	return math.Round(q*10) / 10, r.unit
}

// positions fabricates a preparation chart leaning toward the cuisine's
// dominant element, so timed recipes reinforce its alchemical profile.
func (g *generator) positions(bias alchemy.ElementalVector) astro.PlanetaryPositions {
	dominant := signsOf(bias.Dominant())
	all := astro.Signs()

	out := make(astro.PlanetaryPositions, 10)
	for _, p := range astro.Planets() {
		var sign astro.Sign
		if g.rng.Float64() < 0.5 {
			sign = dominant[g.rng.Intn(len(dominant))]
		} else {
			sign = all[g.rng.Intn(len(all))]
		}
		pos := astro.Position{Sign: sign, Degree: g.rng.Float64() * 30}
		if p != astro.Sun && p != astro.Moon && g.rng.Float64() < 0.15 {
			pos.Retrograde = true
		}
		out[p] = pos
	}
	return out
}

func (g *generator) pickSigns(e astro.Element, n int) []astro.Sign {
	pool := signsOf(e)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

// methodRepertoire picks the cooking methods whose modifiers best feed
// the cuisine's dominant elements.
func methodRepertoire(bias alchemy.ElementalVector) []string {
	table := recipe.DefaultMethodTable()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	sort.SliceStable(names, func(i, j int) bool {
		return methodScore(table[names[i]], bias) > methodScore(table[names[j]], bias)
	})
	if len(names) > 4 {
		names = names[:4]
	}
	return names
}

func methodScore(mod recipe.MethodModifier, bias alchemy.ElementalVector) float64 {
	return mod.Fire*bias.Fire + mod.Water*bias.Water + mod.Earth*bias.Earth + mod.Air*bias.Air
}

func cuisineName(c int) string {
	if c < len(cuisineNames) {
		return cuisineNames[c]
	}
	return fmt.Sprintf("cuisine-%02d", c+1)
}

func signsOf(e astro.Element) []astro.Sign {
	var out []astro.Sign
	for _, s := range astro.Signs() {
		if s.Element() == e {
			out = append(out, s)
		}
	}
	return out
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// octaveNoise layers multiple noise frequencies into one sample.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Writer persists a generated corpus.
type Writer interface {
	SaveIngredients([]*recipe.IngredientRecord) error
	SaveRecipes([]*recipe.RecipeDefinition) error
}

// Populate generates a corpus and writes it through w.
func Populate(w Writer, cfg GenConfig) (*Corpus, error) {
	corpus := Generate(cfg)
	if err := w.SaveIngredients(corpus.Ingredients); err != nil {
		return nil, fmt.Errorf("save ingredients: %w", err)
	}
	if err := w.SaveRecipes(corpus.Recipes); err != nil {
		return nil, fmt.Errorf("save recipes: %w", err)
	}
	slog.Info("sample corpus written",
		"cuisines", cfg.Cuisines,
		"recipes", len(corpus.Recipes),
		"ingredients", len(corpus.Ingredients))
	return corpus, nil
}
