// Command alchm is the culinary calculation CLI. It opens the same
// catalog and cache databases as alchmd, so profiles the daemon has
// published are read straight from the shared tier instead of being
// recomputed here.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/astro"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/catalog"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/chart"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/config"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cuisine"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/positions"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/sample"
)

var (
	configPath string
	verbose    bool
)

func main() {
	defaultConfig, _ := config.DefaultPath()

	rootCmd := &cobra.Command{
		Use:          "alchm",
		Short:        "Culinary property calculations from the command line",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			setupLogger(level)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(computeCmd())
	rootCmd.AddCommand(cuisineCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(positionsCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger keeps CLI output clean: logs go to stderr at warn unless
// --verbose, text for terminals and JSON otherwise.
func setupLogger(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ── Shared wiring ───────────────────────────────────────────────────────

// env bundles the stores every subcommand needs.
type env struct {
	cfg     *config.Config
	store   *catalog.Store
	shared  *cache.SharedCache
	results *cache.ResultCache
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	shared, err := cache.OpenShared(cfg.CachePath, cfg.SharedCacheEntries)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &env{
		cfg:     cfg,
		store:   store,
		shared:  shared,
		results: cache.New(cache.NewHotCache(cfg.HotCacheEntries), shared),
	}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.shared.Close()
}

func (e *env) pipeline() (*recipe.Pipeline, error) {
	weights, err := e.cfg.PlanetWeights()
	if err != nil {
		return nil, err
	}
	methods, err := e.cfg.MethodTable()
	if err != nil {
		return nil, err
	}
	return recipe.NewPipeline(e.store, recipe.NewTransformer(methods), nil, e.results, recipe.PipelineConfig{
		Aggregator: e.cfg.Aggregator,
		Weights:    weights,
		CacheTTL:   e.cfg.RecipeTTL.Std(),
	}), nil
}

func (e *env) positionsService() *positions.Service {
	p := e.cfg.Positions
	return positions.NewService(positions.Config{
		PrimaryURL:       p.PrimaryURL,
		SecondaryURL:     p.SecondaryURL,
		FetchTimeout:     p.FetchTimeout.Std(),
		BreakerThreshold: p.BreakerThreshold,
		BreakerOpenFor:   p.BreakerOpenFor.Std(),
		RatePerMinute:    p.RatePerMinute,
		LastKnownTTL:     p.LastKnownTTL.Std(),
		DisableDefault:   p.DisableDefault,
	}, e.results)
}

func (e *env) location() *positions.Location {
	if e.cfg.Location == nil {
		return nil
	}
	return &positions.Location{
		Latitude:  e.cfg.Location.Latitude,
		Longitude: e.cfg.Location.Longitude,
	}
}

// profileTTL is how long daemon-published baselines and cuisine
// profiles stay readable. Matches the daemon's publish TTL.
func (e *env) profileTTL() time.Duration {
	ttl := 2 * e.cfg.BaselineRefresh.Std()
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return ttl
}

// ── Subcommands ─────────────────────────────────────────────────────────

func computeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compute [recipe-id]",
		Short: "Compute elemental, alchemical and thermodynamic properties for a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			def, err := e.store.Recipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p, err := e.pipeline()
			if err != nil {
				return err
			}
			props, err := p.Compute(cmd.Context(), def)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(props)
			}
			printRecipe(def, props)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func cuisineCmd() *cobra.Command {
	var (
		asJSON bool
		fresh  bool
	)

	cmd := &cobra.Command{
		Use:   "cuisine [name]",
		Short: "Show a cuisine's aggregate profile and signature properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			name := args[0]
			if !fresh {
				if payload, ok := e.results.Get("cuisine", name, e.profileTTL()); ok {
					var profile cuisine.ComputedProperties
					if err := json.Unmarshal(payload, &profile); err == nil {
						if asJSON {
							return printJSON(&profile)
						}
						printCuisine(&profile)
						return nil
					}
				}
			}

			profile, err := computeCuisine(cmd.Context(), e, name)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(profile)
			}
			printCuisine(profile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "recompute instead of reading the daemon-published profile")
	return cmd
}

// computeCuisine rebuilds a profile from the catalog. The whole corpus
// is computed because signature z-scores need the global baseline.
func computeCuisine(ctx context.Context, e *env, name string) (*cuisine.ComputedProperties, error) {
	defs, err := e.store.RecipesByCuisine(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no recipes for cuisine %q", name)
	}

	all, err := e.store.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	p, err := e.pipeline()
	if err != nil {
		return nil, err
	}
	corpus, err := p.ComputeAll(ctx, all)
	if err != nil {
		return nil, err
	}

	agg := cuisine.NewAggregator(0)
	baseline, err := agg.ComputeBaseline(ctx, corpus)
	if err != nil {
		return nil, err
	}

	var records []*recipe.RecipeComputedProperties
	for i, def := range all {
		if def.Cuisine == name && corpus[i] != nil {
			records = append(records, corpus[i])
		}
	}
	return agg.Aggregate(ctx, name, records, baseline)
}

func compareCmd() *cobra.Command {
	var (
		natalFile string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score a natal chart against the current planetary moment",
		RunE: func(cmd *cobra.Command, args []string) error {
			natalPos, err := loadChartFile(natalFile)
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			weights, err := e.cfg.PlanetWeights()
			if err != nil {
				return err
			}
			builder := chart.NewBuilder(weights, nil)
			natal := builder.Natal(natalPos)

			moments := chart.NewMomentService(e.positionsService(), builder, e.results, e.cfg.MomentTTL.Std())
			moment, err := moments.Moment(cmd.Context(), e.location())
			if err != nil {
				return err
			}

			result := chart.NewComparator(chart.ComparisonConfig{}).Compare(natal, moment)
			if asJSON {
				return printJSON(result)
			}
			printComparison(natal, moment, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&natalFile, "natal", "", "YAML file of natal planetary positions (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	cmd.MarkFlagRequired("natal")
	return cmd
}

// loadChartFile reads planetary positions from a YAML file keyed by
// planet, e.g. "sun: {sign: aries, degree: 15.5}".
func loadChartFile(path string) (astro.PlanetaryPositions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pos astro.PlanetaryPositions
	if err := yaml.Unmarshal(data, &pos); err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", path, err)
	}
	if len(pos) == 0 {
		return nil, fmt.Errorf("chart %s has no positions", path)
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("chart %s: %w", path, err)
	}
	return pos, nil
}

func positionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Show current planetary positions and which source answered",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.positionsService().Current(cmd.Context(), e.location())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(res)
			}
			fmt.Printf("Source tier: %s", res.Tier)
			if res.Stale {
				fmt.Printf(" (stale, fetched %s)", humanize.Time(res.FetchedAt))
			}
			fmt.Println()
			for _, planet := range astro.Planets() {
				pos, ok := res.Positions[planet]
				if !ok {
					continue
				}
				retro := ""
				if pos.Retrograde {
					retro = "  retrograde"
				}
				fmt.Printf("  %-8s  %-12s %5.2f°%s\n", planet.Name(), pos.Sign.Name(), pos.Degree, retro)
			}

			now := time.Now()
			dayRuler := astro.DayRuler(now.Weekday())
			hourRuler := astro.HourRuler(now)
			fmt.Printf("Season:  %s (%s)\n", astro.SignForDate(now).Name(), astro.SeasonElement(now))
			fmt.Printf("Moon:    %s, %.0f%% illuminated\n", astro.PhaseAt(now), astro.Illumination(now)*100)
			fmt.Printf("Ruler:   %s day (%s), %s hour (%s)\n",
				dayRuler.Name(), astro.RulerElement(dayRuler),
				hourRuler.Name(), astro.RulerElement(hourRuler))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func seedCmd() *cobra.Command {
	var (
		cuisines    int
		recipes     int
		ingredients int
		seed        int64
		small       bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a sample corpus into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := sample.DefaultGenConfig()
			if small {
				gen = sample.SmallTestConfig()
			}
			if cuisines > 0 {
				gen.Cuisines = cuisines
			}
			if recipes > 0 {
				gen.Recipes = recipes
			}
			if ingredients > 0 {
				gen.Ingredients = ingredients
			}
			if seed != 0 {
				gen.Seed = seed
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			corpus, err := sample.Populate(e.store, gen)
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %s ingredients and %s recipes across %d cuisines.\n",
				humanize.Comma(int64(len(corpus.Ingredients))),
				humanize.Comma(int64(len(corpus.Recipes))),
				gen.Cuisines)
			return nil
		},
	}

	cmd.Flags().IntVar(&cuisines, "cuisines", 0, "number of cuisines")
	cmd.Flags().IntVar(&recipes, "recipes", 0, "recipes per cuisine")
	cmd.Flags().IntVar(&ingredients, "ingredients", 0, "ingredient catalog size")
	cmd.Flags().Int64Var(&seed, "seed", 0, "noise seed, 0 picks one at random")
	cmd.Flags().BoolVar(&small, "small", false, "tiny fixed-seed corpus")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog contents and cache health",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			ingredients, recipes, err := e.store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Catalog:  %s ingredients, %s recipes\n",
				humanize.Comma(int64(ingredients)), humanize.Comma(int64(recipes)))

			cuisines, err := e.store.Cuisines(cmd.Context())
			if err != nil {
				return err
			}
			if len(cuisines) > 0 {
				fmt.Printf("Cuisines: %s\n", strings.Join(cuisines, ", "))
			}

			stats := e.results.Stats()
			fmt.Printf("Cache:    %s shared rows\n", humanize.Comma(int64(stats.SharedRows)))

			if payload, ok := e.results.Get("baseline", "global", e.profileTTL()); ok {
				var b cuisine.Baseline
				if err := json.Unmarshal(payload, &b); err == nil {
					fmt.Printf("Baseline: %s recipes, refreshed %s\n",
						humanize.Comma(int64(b.RecipeCount)), humanize.Time(b.ComputedAt))
					return nil
				}
			}
			fmt.Println("Baseline: not published (is alchmd running?)")
			return nil
		},
	}
}

// ── Output ──────────────────────────────────────────────────────────────

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printRecipe(def *recipe.RecipeDefinition, props *recipe.RecipeComputedProperties) {
	fmt.Printf("%s (%s)\n", def.Name, def.ID)
	if def.Cuisine != "" {
		fmt.Printf("Cuisine:   %s\n", def.Cuisine)
	}
	fmt.Printf("Elements:  %s\n", formatVector(props.Elements))
	if props.Alchemy != nil {
		a := props.Alchemy
		fmt.Printf("Alchemy:   Spirit %.2f  Essence %.2f  Matter %.2f  Substance %.2f\n",
			a.Spirit, a.Essence, a.Matter, a.Substance)
	}
	if props.Thermo != nil {
		m := props.Thermo
		fmt.Printf("Thermo:    Heat %.4f  Entropy %.4f  Reactivity %.4f  GregsEnergy %.4f\n",
			m.Heat, m.Entropy, m.Reactivity, m.GregsEnergy)
		if m.Monica.Defined {
			fmt.Printf("           Kalchm %.4f  Monica %.4f\n", m.Kalchm, m.Monica.Value)
		} else {
			fmt.Printf("           Kalchm %.4f  Monica undefined\n", m.Kalchm)
		}
	}
	if !props.HasTiming {
		fmt.Println("No preparation timing; planetary properties omitted.")
	}
	fmt.Printf("Computed:  %s\n", humanize.Time(props.ComputedAt))
}

func printCuisine(p *cuisine.ComputedProperties) {
	fmt.Printf("%s (%s recipes)\n", p.Cuisine, humanize.Comma(int64(p.RecipeCount)))
	fmt.Printf("Elements: %s\n", formatVector(p.Elements))
	if len(p.Signatures) == 0 {
		fmt.Println("No signatures: every property sits near the corpus average.")
	} else {
		fmt.Println("Signatures:")
		for _, s := range p.Signatures {
			fmt.Printf("  %-12s mean %.4f  z %+.2f\n", s.Property, s.Mean, s.ZScore)
		}
	}
	if len(p.Patterns) > 0 {
		fmt.Println("Recurring placements:")
		for _, pt := range p.Patterns {
			fmt.Printf("  %s in %s (%.0f%% of timed recipes)\n", pt.Planet.Name(), pt.Sign.Name(), pt.Share*100)
		}
	}
	fmt.Printf("Computed: %s\n", humanize.Time(p.ComputedAt))
}

func printComparison(natal, moment *chart.Chart, result chart.Comparison) {
	fmt.Printf("Natal:  dominant %s, deficient %s\n",
		natal.Constitution.Dominant, natal.Constitution.Deficient)
	fmt.Printf("Moment: %s tier", moment.Tier)
	if result.Stale {
		fmt.Print(", stale positions")
	}
	fmt.Println()
	fmt.Printf("Elemental harmony:     %.3f\n", result.ElementalHarmony)
	fmt.Printf("Alchemical alignment:  %.3f\n", result.AlchemicalAlignment)
	fmt.Printf("Planetary resonance:   %.3f across %d planets\n", result.PlanetaryResonance, result.ComparedPlanets)
	fmt.Printf("Overall harmony:       %.3f\n", result.OverallHarmony)
	fmt.Printf("Recommendation boost:  x%.3f\n", result.Boost)

	phase := astro.PhaseAt(time.Now())
	if boost := astro.LunarBoost(phase, natal.Constitution.Dominant); boost != 1.0 {
		fmt.Printf("Lunar boost:           x%.2f (%s favors %s)\n", boost, phase, natal.Constitution.Dominant)
	}
}

func formatVector(v alchemy.ElementalVector) string {
	return fmt.Sprintf("Fire %.3f  Water %.3f  Earth %.3f  Air %.3f", v.Fire, v.Water, v.Earth, v.Air)
}
