// Command alchmd runs the culinary calculation daemon. It keeps the
// global recipe baseline and per-cuisine profiles fresh in the shared
// cache, pre-warms the moment chart, watches the lookup tables for
// edits, and optionally serves Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cache"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/catalog"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/chart"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/config"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/cuisine"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/positions"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

func main() {
	setupLogger(slog.LevelInfo)

	// ── Config ────────────────────────────────────────────────────────
	configPath := os.Getenv("ALCHMD_CONFIG")
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			slog.Error("failed to resolve config path", "error", err)
			os.Exit(1)
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.LogLevel != "" && cfg.LogLevel != "info" {
		setupLogger(parseLevel(cfg.LogLevel))
	}
	slog.Info("config loaded", "path", configPath)

	// Environment overrides for deployment knobs.
	cfg.MetricsAddr = envOrDefault("ALCHMD_METRICS_ADDR", cfg.MetricsAddr)
	if mins := envIntOrDefault("ALCHMD_REFRESH_MINUTES", 0); mins > 0 {
		cfg.BaselineRefresh = config.Duration(time.Duration(mins) * time.Minute)
	}

	// ── Storage ───────────────────────────────────────────────────────
	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("catalog opened", "path", cfg.CatalogPath)

	shared, err := cache.OpenShared(cfg.CachePath, cfg.SharedCacheEntries)
	if err != nil {
		slog.Error("failed to open shared cache", "error", err)
		os.Exit(1)
	}
	defer shared.Close()
	results := cache.New(cache.NewHotCache(cfg.HotCacheEntries), shared)

	// ── Positions ─────────────────────────────────────────────────────
	posService := positions.NewService(positions.Config{
		PrimaryURL:       cfg.Positions.PrimaryURL,
		SecondaryURL:     cfg.Positions.SecondaryURL,
		FetchTimeout:     cfg.Positions.FetchTimeout.Std(),
		BreakerThreshold: cfg.Positions.BreakerThreshold,
		BreakerOpenFor:   cfg.Positions.BreakerOpenFor.Std(),
		RatePerMinute:    cfg.Positions.RatePerMinute,
		LastKnownTTL:     cfg.Positions.LastKnownTTL.Std(),
		DisableDefault:   cfg.Positions.DisableDefault,
	}, results)

	var loc *positions.Location
	if cfg.Location != nil {
		loc = &positions.Location{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude}
	}

	// ── Engine ────────────────────────────────────────────────────────
	d := &daemon{
		cfg:     cfg,
		store:   store,
		results: results,
		source:  posService,
		loc:     loc,
		agg:     cuisine.NewAggregator(0),
	}
	if err := d.buildServices(); err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Table watcher ─────────────────────────────────────────────────
	if files := cfg.TableFiles(); len(files) > 0 {
		watcher, err := config.NewTableWatcher(files, config.DefaultDebounce, d.reloadTables)
		if err != nil {
			slog.Error("failed to watch table files", "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		watcher.Start(ctx)
		slog.Info("watching lookup tables", "files", files)
	}

	// ── Metrics ───────────────────────────────────────────────────────
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics listener failed", "error", err)
			}
		}()
	}

	// ── Refresh loops ─────────────────────────────────────────────────
	baselineEvery := cfg.BaselineRefresh.Std()
	if baselineEvery <= 0 {
		baselineEvery = time.Hour
	}
	momentEvery := cfg.MomentTTL.Std()
	if momentEvery <= 0 {
		momentEvery = chart.DefaultMomentTTL
	}

	d.refreshBaseline(ctx)
	d.warmMoment(ctx)

	baselineTicker := time.NewTicker(baselineEvery)
	defer baselineTicker.Stop()
	momentTicker := time.NewTicker(momentEvery)
	defer momentTicker.Stop()
	ageTicker := time.NewTicker(time.Minute)
	defer ageTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("alchmd running",
		"baselineRefresh", baselineEvery,
		"momentRefresh", momentEvery,
	)

	for {
		select {
		case <-baselineTicker.C:
			d.refreshBaseline(ctx)
		case <-momentTicker.C:
			d.warmMoment(ctx)
		case <-ageTicker.C:
			metrics.SetBaselineAge(d.baselineAge())
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			return
		}
	}
}

// daemon holds the services that survive across refresh cycles. The
// pipeline and moment service are rebuilt on table reload; everything
// else is fixed at startup.
type daemon struct {
	cfg     *config.Config
	store   *catalog.Store
	results *cache.ResultCache
	source  *positions.Service
	loc     *positions.Location
	agg     *cuisine.Aggregator

	mu         sync.Mutex
	pipeline   *recipe.Pipeline
	moments    *chart.MomentService
	baselineAt time.Time
}

// buildServices constructs the pipeline and moment service from the
// current lookup tables.
func (d *daemon) buildServices() error {
	weights, err := d.cfg.PlanetWeights()
	if err != nil {
		return err
	}
	methods, err := d.cfg.MethodTable()
	if err != nil {
		return err
	}

	pipeline := recipe.NewPipeline(d.store, recipe.NewTransformer(methods), nil, d.results, recipe.PipelineConfig{
		Aggregator: d.cfg.Aggregator,
		Weights:    weights,
		CacheTTL:   d.cfg.RecipeTTL.Std(),
	})
	moments := chart.NewMomentService(d.source, chart.NewBuilder(weights, nil), d.results, d.cfg.MomentTTL.Std())

	d.mu.Lock()
	d.pipeline = pipeline
	d.moments = moments
	d.mu.Unlock()
	return nil
}

func (d *daemon) currentPipeline() *recipe.Pipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pipeline
}

func (d *daemon) currentMoments() *chart.MomentService {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.moments
}

func (d *daemon) baselineAge() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.baselineAt.IsZero() {
		return 0
	}
	return time.Since(d.baselineAt)
}

// reloadTables rebuilds the table-dependent services and drops the
// derived cache entries. Runs from the table watcher.
func (d *daemon) reloadTables(path string) {
	if err := d.buildServices(); err != nil {
		slog.Error("table reload failed, keeping previous tables", "path", path, "error", err)
		return
	}

	for _, calcType := range []string{"recipe", "cuisine", "baseline", "moment"} {
		d.results.InvalidateType(calcType)
	}
	slog.Info("lookup tables reloaded", "path", path)
}

// refreshBaseline recomputes the corpus baseline and every cuisine
// profile, publishing them through the shared cache for CLI readers.
func (d *daemon) refreshBaseline(ctx context.Context) {
	start := time.Now()

	defs, err := d.store.Recipes(ctx)
	if err != nil {
		slog.Error("baseline refresh: load recipes", "error", err)
		return
	}
	if len(defs) == 0 {
		slog.Warn("baseline refresh skipped, catalog is empty")
		return
	}

	props, err := d.currentPipeline().ComputeAll(ctx, defs)
	if err != nil {
		slog.Error("baseline refresh: compute recipes", "error", err)
		return
	}

	baseline, err := d.agg.ComputeBaseline(ctx, props)
	if err != nil {
		slog.Error("baseline refresh: aggregate corpus", "error", err)
		return
	}

	ttl := 2 * d.cfg.BaselineRefresh.Std()
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if payload, err := json.Marshal(baseline); err == nil {
		d.results.Put("baseline", "global", payload, ttl)
	}

	byCuisine := make(map[string][]*recipe.RecipeComputedProperties)
	for i, def := range defs {
		if props[i] != nil && def.Cuisine != "" {
			byCuisine[def.Cuisine] = append(byCuisine[def.Cuisine], props[i])
		}
	}
	for name, records := range byCuisine {
		profile, err := d.agg.Aggregate(ctx, name, records, baseline)
		if err != nil {
			slog.Warn("cuisine aggregation failed", "cuisine", name, "error", err)
			continue
		}
		if payload, err := json.Marshal(profile); err == nil {
			d.results.Put("cuisine", name, payload, ttl)
		}
	}

	d.mu.Lock()
	d.baselineAt = time.Now()
	d.mu.Unlock()
	metrics.SetBaselineAge(0)

	slog.Info("baseline refreshed",
		"recipes", len(defs),
		"cuisines", len(byCuisine),
		"took", time.Since(start),
	)
}

// warmMoment computes the current moment chart so the shared cache stays
// ahead of CLI readers.
func (d *daemon) warmMoment(ctx context.Context) {
	ch, err := d.currentMoments().Moment(ctx, d.loc)
	if err != nil {
		slog.Warn("moment chart refresh failed", "error", err)
		return
	}
	slog.Debug("moment chart refreshed", "tier", ch.Tier, "stale", ch.Stale)
}

func setupLogger(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
