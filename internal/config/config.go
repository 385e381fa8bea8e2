// Package config loads the engine's YAML configuration and the editable
// lookup tables (cooking-method modifiers, planet weights), and watches
// the table files so callers can invalidate derived caches on edit.
// A Config is constructed once in main and handed to the services that
// need it; there is no package-level state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/alchemy"
	"github.com/gregcastro23/WhatToEatNext-sub005/internal/recipe"
)

var validate = validator.New()

// Duration is a time.Duration that YAML-encodes as a string like "5m".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// PositionsConfig holds the planetary-position fallback chain settings.
type PositionsConfig struct {
	PrimaryURL       string   `yaml:"primaryURL" validate:"omitempty,url"`
	SecondaryURL     string   `yaml:"secondaryURL" validate:"omitempty,url"`
	FetchTimeout     Duration `yaml:"fetchTimeout"`
	BreakerThreshold int      `yaml:"breakerThreshold" validate:"gte=0"`
	BreakerOpenFor   Duration `yaml:"breakerOpenFor"`
	RatePerMinute    int      `yaml:"ratePerMinute" validate:"gte=0"`
	LastKnownTTL     Duration `yaml:"lastKnownTTL"`
	DisableDefault   bool     `yaml:"disableDefault"`
}

// LocationConfig is an optional observer location forwarded to position
// providers.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
}

// Config is the daemon and CLI configuration.
type Config struct {
	CatalogPath string `yaml:"catalogPath" validate:"required"`
	CachePath   string `yaml:"cachePath" validate:"required"`

	HotCacheEntries    int `yaml:"hotCacheEntries" validate:"gt=0"`
	SharedCacheEntries int `yaml:"sharedCacheEntries" validate:"gt=0"`

	RecipeTTL       Duration `yaml:"recipeTTL"`
	MomentTTL       Duration `yaml:"momentTTL"`
	BaselineRefresh Duration `yaml:"baselineRefresh"`

	// WeightScheme selects the built-in planet-weight set; WeightsFile,
	// when set, overrides it with an editable table.
	WeightScheme string `yaml:"weightScheme" validate:"omitempty,oneof=traditional mass"`
	WeightsFile  string `yaml:"weightsFile"`
	MethodsFile  string `yaml:"methodsFile"`

	Aggregator recipe.AggregatorConfig `yaml:"aggregator"`
	Positions  PositionsConfig         `yaml:"positions"`
	Location   *LocationConfig         `yaml:"location,omitempty"`

	MetricsAddr string `yaml:"metricsAddr"`
	LogLevel    string `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		CatalogPath:        "alchm-catalog.db",
		CachePath:          "alchm-cache.db",
		HotCacheEntries:    512,
		SharedCacheEntries: 10000,
		RecipeTTL:          Duration(time.Hour),
		MomentTTL:          Duration(5 * time.Minute),
		BaselineRefresh:    Duration(time.Hour),
		WeightScheme:       "traditional",
		Positions: PositionsConfig{
			FetchTimeout:     Duration(5 * time.Second),
			BreakerThreshold: 5,
			BreakerOpenFor:   Duration(time.Minute),
			RatePerMinute:    30,
			LastKnownTTL:     Duration(7 * 24 * time.Hour),
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the per-user config location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".alchm", "config.yaml"), nil
}

// Load reads the config at path, writing the defaults there first if the
// file does not exist. Absent keys keep their default values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write default config %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for name, d := range map[string]Duration{
		"recipeTTL":       c.RecipeTTL,
		"momentTTL":       c.MomentTTL,
		"baselineRefresh": c.BaselineRefresh,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// PlanetWeights resolves the configured weight set: the weights file when
// given, otherwise the named built-in scheme.
func (c *Config) PlanetWeights() (alchemy.PlanetWeights, error) {
	if c.WeightsFile != "" {
		return LoadPlanetWeights(c.WeightsFile)
	}
	if c.WeightScheme == "mass" {
		return alchemy.MassWeights(), nil
	}
	return alchemy.TraditionalWeights(), nil
}

// MethodTable resolves the cooking-method modifier table: the methods
// file when given, otherwise the built-in defaults.
func (c *Config) MethodTable() (recipe.MethodTable, error) {
	if c.MethodsFile != "" {
		return LoadMethodTable(c.MethodsFile)
	}
	return recipe.DefaultMethodTable(), nil
}

// TableFiles lists the table files configured for hot reload.
func (c *Config) TableFiles() []string {
	var files []string
	if c.MethodsFile != "" {
		files = append(files, c.MethodsFile)
	}
	if c.WeightsFile != "" {
		files = append(files, c.WeightsFile)
	}
	return files
}
