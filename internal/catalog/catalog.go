// Package catalog provides SQLite-backed storage for the reference data
// the engine computes from: the ingredient catalog and the recipe/cuisine
// catalog. Rows are validated on the way in and on the way out, so a
// corrupted catalog surfaces at the boundary instead of inside a
// computation.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

// ErrNotFound is returned when a requested ingredient or recipe does not
// exist in the catalog.
var ErrNotFound = errors.New("catalog: not found")

// Store wraps a SQLite connection holding the ingredient and recipe
// catalogs.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingredients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		fire REAL NOT NULL,
		water REAL NOT NULL,
		earth REAL NOT NULL,
		air REAL NOT NULL,
		affinities_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cuisine TEXT NOT NULL DEFAULT '',
		popularity REAL NOT NULL DEFAULT 0,
		methods_json TEXT NOT NULL DEFAULT '[]',
		positions_json TEXT,
		prepared_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		ingredient_id TEXT NOT NULL,
		quantity REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (recipe_id, ordinal)
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_cuisine ON recipes(cuisine);
	CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe ON recipe_ingredients(recipe_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

type ingredientRow struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Category       string  `db:"category"`
	Fire           float64 `db:"fire"`
	Water          float64 `db:"water"`
	Earth          float64 `db:"earth"`
	Air            float64 `db:"air"`
	AffinitiesJSON string  `db:"affinities_json"`
}

func (r ingredientRow) record() (*recipe.IngredientRecord, error) {
	rec := &recipe.IngredientRecord{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Elements: alchemy.ElementalVector{Fire: r.Fire, Water: r.Water, Earth: r.Earth, Air: r.Air},
	}
	if err := json.Unmarshal([]byte(r.AffinitiesJSON), &rec.Affinities); err != nil {
		return nil, fmt.Errorf("ingredient %s: decode affinities: %w", r.ID, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("ingredient %s: %w", r.ID, err)
	}
	return rec, nil
}

// SaveIngredients upserts a batch of ingredient records in one
// transaction. Every record is validated before any row is written.
func (s *Store) SaveIngredients(records []*recipe.IngredientRecord) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("ingredient %s: %w", rec.ID, err)
		}
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO ingredients
		(id, name, category, fire, water, earth, air, affinities_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			fire = excluded.fire,
			water = excluded.water,
			earth = excluded.earth,
			air = excluded.air,
			affinities_json = excluded.affinities_json`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		affinities, _ := json.Marshal(rec.Affinities)
		if _, err := stmt.Exec(
			rec.ID, rec.Name, rec.Category,
			rec.Elements.Fire, rec.Elements.Water, rec.Elements.Earth, rec.Elements.Air,
			string(affinities),
		); err != nil {
			return fmt.Errorf("insert ingredient %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// Ingredient loads one validated ingredient record by id.
func (s *Store) Ingredient(ctx context.Context, id string) (*recipe.IngredientRecord, error) {
	var row ingredientRow
	err := s.conn.GetContext(ctx, &row, "SELECT * FROM ingredients WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load ingredient %s: %w", id, err)
	}
	return row.record()
}

// Ingredients loads the full ingredient catalog.
func (s *Store) Ingredients(ctx context.Context) ([]*recipe.IngredientRecord, error) {
	var rows []ingredientRow
	if err := s.conn.SelectContext(ctx, &rows, "SELECT * FROM ingredients ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}

	out := make([]*recipe.IngredientRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

type recipeRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Cuisine       string         `db:"cuisine"`
	Popularity    float64        `db:"popularity"`
	MethodsJSON   string         `db:"methods_json"`
	PositionsJSON sql.NullString `db:"positions_json"`
	PreparedAt    sql.NullInt64  `db:"prepared_at"`
}

func (r recipeRow) definition(items []itemRow) (*recipe.RecipeDefinition, error) {
	def := &recipe.RecipeDefinition{
		ID:         r.ID,
		Name:       r.Name,
		Cuisine:    r.Cuisine,
		Popularity: r.Popularity,
	}
	if err := json.Unmarshal([]byte(r.MethodsJSON), &def.Methods); err != nil {
		return nil, fmt.Errorf("recipe %s: decode methods: %w", r.ID, err)
	}
	if r.PositionsJSON.Valid && r.PositionsJSON.String != "" {
		var pos astro.PlanetaryPositions
		if err := json.Unmarshal([]byte(r.PositionsJSON.String), &pos); err != nil {
			return nil, fmt.Errorf("recipe %s: decode positions: %w", r.ID, err)
		}
		def.Positions = pos
	}
	if r.PreparedAt.Valid {
		at := time.Unix(r.PreparedAt.Int64, 0).UTC()
		def.PreparedAt = &at
	}

	def.Ingredients = make([]recipe.RecipeIngredient, 0, len(items))
	for _, item := range items {
		def.Ingredients = append(def.Ingredients, recipe.RecipeIngredient{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.ID, err)
	}
	return def, nil
}

type itemRow struct {
	RecipeID     string  `db:"recipe_id"`
	Ordinal      int     `db:"ordinal"`
	IngredientID string  `db:"ingredient_id"`
	Quantity     float64 `db:"quantity"`
	Unit         string  `db:"unit"`
}

// SaveRecipes upserts recipe definitions and their ingredient lists in
// one transaction. Every definition is validated before any row is
// written.
func (s *Store) SaveRecipes(defs []*recipe.RecipeDefinition) error {
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("recipe %s: %w", def.ID, err)
		}
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	recipeStmt, err := tx.Preparex(`INSERT INTO recipes
		(id, name, cuisine, popularity, methods_json, positions_json, prepared_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cuisine = excluded.cuisine,
			popularity = excluded.popularity,
			methods_json = excluded.methods_json,
			positions_json = excluded.positions_json,
			prepared_at = excluded.prepared_at`)
	if err != nil {
		return err
	}
	defer recipeStmt.Close()

	itemStmt, err := tx.Preparex(`INSERT INTO recipe_ingredients
		(recipe_id, ordinal, ingredient_id, quantity, unit)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	for _, def := range defs {
		methods, _ := json.Marshal(def.Methods)

		var positionsJSON interface{}
		if def.Positions != nil {
			payload, err := json.Marshal(def.Positions)
			if err != nil {
				return fmt.Errorf("recipe %s: encode positions: %w", def.ID, err)
			}
			positionsJSON = string(payload)
		}

		var preparedAt interface{}
		if def.PreparedAt != nil {
			preparedAt = def.PreparedAt.Unix()
		}

		if _, err := recipeStmt.Exec(
			def.ID, def.Name, def.Cuisine, def.Popularity,
			string(methods), positionsJSON, preparedAt,
		); err != nil {
			return fmt.Errorf("insert recipe %s: %w", def.ID, err)
		}

		// Replace the ingredient list wholesale; ordinals keep order.
		if _, err := tx.Exec("DELETE FROM recipe_ingredients WHERE recipe_id = ?", def.ID); err != nil {
			return err
		}
		for i, item := range def.Ingredients {
			if _, err := itemStmt.Exec(def.ID, i, item.IngredientID, item.Quantity, item.Unit); err != nil {
				return fmt.Errorf("insert recipe %s item %d: %w", def.ID, i, err)
			}
		}
	}

	return tx.Commit()
}

// Recipe loads one validated recipe definition by id.
func (s *Store) Recipe(ctx context.Context, id string) (*recipe.RecipeDefinition, error) {
	var row recipeRow
	err := s.conn.GetContext(ctx, &row, "SELECT * FROM recipes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", id, err)
	}

	items, err := s.recipeItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.definition(items)
}

func (s *Store) recipeItems(ctx context.Context, recipeID string) ([]itemRow, error) {
	var items []itemRow
	err := s.conn.SelectContext(ctx, &items,
		"SELECT * FROM recipe_ingredients WHERE recipe_id = ? ORDER BY ordinal", recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe %s items: %w", recipeID, err)
	}
	return items, nil
}

func (s *Store) definitions(ctx context.Context, rows []recipeRow) ([]*recipe.RecipeDefinition, error) {
	out := make([]*recipe.RecipeDefinition, 0, len(rows))
	for _, row := range rows {
		items, err := s.recipeItems(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		def, err := row.definition(items)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// RecipesByCuisine loads every recipe belonging to one cuisine.
func (s *Store) RecipesByCuisine(ctx context.Context, cuisine string) ([]*recipe.RecipeDefinition, error) {
	var rows []recipeRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT * FROM recipes WHERE cuisine = ? ORDER BY id", cuisine)
	if err != nil {
		return nil, fmt.Errorf("load cuisine %s: %w", cuisine, err)
	}
	return s.definitions(ctx, rows)
}

// Recipes loads the entire recipe corpus.
func (s *Store) Recipes(ctx context.Context) ([]*recipe.RecipeDefinition, error) {
	var rows []recipeRow
	if err := s.conn.SelectContext(ctx, &rows, "SELECT * FROM recipes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	return s.definitions(ctx, rows)
}

// Cuisines lists the distinct cuisines present in the catalog.
func (s *Store) Cuisines(ctx context.Context) ([]string, error) {
	var out []string
	err := s.conn.SelectContext(ctx, &out,
		"SELECT DISTINCT cuisine FROM recipes WHERE cuisine != '' ORDER BY cuisine")
	if err != nil {
		return nil, fmt.Errorf("list cuisines: %w", err)
	}
	return out, nil
}

// Counts reports catalog sizes for status output.
func (s *Store) Counts(ctx context.Context) (ingredients, recipes int, err error) {
	if err = s.conn.GetContext(ctx, &ingredients, "SELECT COUNT(*) FROM ingredients"); err != nil {
		return 0, 0, err
	}
	if err = s.conn.GetContext(ctx, &recipes, "SELECT COUNT(*) FROM recipes"); err != nil {
		return 0, 0, err
	}
	return ingredients, recipes, nil
}
