// SPDX-License-Identifier: MIT

// Package config loads lvxrd settings from YAML.
//
// Every field has a default (see Default); a document only needs the keys
// it changes:
//
//	log:
//	  mode: production
//	  level: info
//	cache:
//	  backend: sqlite
//	  path: /var/cache/lvxrd.db
//	mixture:
//	  metric: rwp
//	refine:
//	  strategy: genetic
//	  seed: 42
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvxrd/cache"
	"github.com/katalvlaran/lvxrd/logger"
	"github.com/katalvlaran/lvxrd/mixture"
	"github.com/katalvlaran/lvxrd/probability"
	"github.com/katalvlaran/lvxrd/refine"
	"github.com/katalvlaran/lvxrd/residual"
)

// EnvPath names the environment variable LoadFromEnv reads the config path from.
const EnvPath = "LVXRD_CONFIG"

// ErrInvalid indicates a configuration that parsed but failed validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the root document.
type Config struct {
	Log         Log         `yaml:"log"`
	Cache       Cache       `yaml:"cache"`
	Mixture     Mixture     `yaml:"mixture"`
	Refine      Refine      `yaml:"refine"`
	Probability Probability `yaml:"probability"`
}

// Log selects the zap preset and level.
type Log struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// Cache selects the computation cache backend.
type Cache struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Mixture tunes the mixture optimiser.
type Mixture struct {
	Metric        string  `yaml:"metric"`
	MaxIterations int     `yaml:"max_iterations"`
	ScaleMin      float64 `yaml:"scale_min"`
	Penalty       float64 `yaml:"penalty"`
	GradientStep  float64 `yaml:"gradient_step"`
	SkipPolish    bool    `yaml:"skip_polish"`
}

// Refine selects and tunes the refinement strategy.
type Refine struct {
	Strategy       string  `yaml:"strategy"`
	MaxIterations  int     `yaml:"max_iterations"`
	MaxEvaluations int     `yaml:"max_evaluations"`
	Population     int     `yaml:"population"`
	Restarts       int     `yaml:"restarts"`
	Workers        int     `yaml:"workers"`
	Seed           int64   `yaml:"seed"`
	StepSize       float64 `yaml:"step_size"`
	Mutation       float64 `yaml:"mutation"`
	Crossover      float64 `yaml:"crossover"`
}

// Probability holds the validation tolerances of the stacking models.
type Probability struct {
	Tolerance     float64 `yaml:"tolerance"`
	R3G2Tolerance float64 `yaml:"r3g2_tolerance"`
}

// Default returns the built-in configuration.
func Default() Config {
	ro := refine.DefaultOptions()
	return Config{
		Log:   Log{Mode: "dev"},
		Cache: Cache{Backend: cache.BackendMemory, MaxBytes: cache.DefaultMaxBytes},
		Mixture: Mixture{
			Metric:        residual.MetricRp.String(),
			MaxIterations: mixture.DefaultMaxIterations,
			ScaleMin:      mixture.DefaultScaleMin,
			Penalty:       mixture.DefaultPenalty,
			GradientStep:  mixture.DefaultGradientStep,
		},
		Refine: Refine{
			Strategy:      refine.NelderMead,
			MaxIterations: ro.MaxIterations,
			Restarts:      ro.Restarts,
			StepSize:      ro.StepSize,
			Mutation:      ro.Mutation,
			Crossover:     ro.Crossover,
		},
		Probability: Probability{
			Tolerance:     probability.DefaultTolerance,
			R3G2Tolerance: probability.R3G2Tolerance,
		},
	}
}

// Parse decodes a YAML document over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// LoadFromEnv loads the file named by $LVXRD_CONFIG, or returns the
// defaults when the variable is unset or blank.
func LoadFromEnv() (Config, error) {
	if path := strings.TrimSpace(os.Getenv(EnvPath)); path != "" {
		return Load(path)
	}
	return Default(), nil
}

// Validate checks values a decoder cannot.
func (c Config) Validate() error {
	var errs []error
	if _, err := residual.ParseMetric(c.Mixture.Metric); err != nil {
		errs = append(errs, err)
	}
	if _, err := refine.NewStrategy(c.Refine.Strategy, refine.Options{}); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Cache.Backend)) {
	case "", cache.BackendMemory, cache.BackendNone, "nop", "off":
	case cache.BackendSQLite:
		if c.Cache.Path == "" {
			errs = append(errs, cache.ErrMissingPath)
		}
	default:
		errs = append(errs, fmt.Errorf("cache backend %q: %w", c.Cache.Backend, cache.ErrUnknownBackend))
	}
	if c.Cache.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("cache.max_bytes %d is negative", c.Cache.MaxBytes))
	}
	if c.Refine.Crossover < 0 || c.Refine.Crossover > 1 {
		errs = append(errs, fmt.Errorf("refine.crossover %g outside [0, 1]", c.Refine.Crossover))
	}
	if c.Refine.Workers < 0 || c.Refine.Population < 0 || c.Refine.MaxEvaluations < 0 {
		errs = append(errs, errors.New("refine: workers, population and max_evaluations must not be negative"))
	}
	if c.Probability.Tolerance <= 0 || c.Probability.R3G2Tolerance <= 0 {
		errs = append(errs, errors.New("probability tolerances must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Logger builds the configured logger.
func (c Config) Logger() (*logger.Logger, error) {
	return logger.NewWithLevel(c.Log.Mode, c.Log.Level)
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(log *logger.Logger) (cache.Cache, error) {
	return cache.Open(cache.Options{
		Backend:  c.Cache.Backend,
		Path:     c.Cache.Path,
		MaxBytes: c.Cache.MaxBytes,
		Logger:   log,
	})
}

// MixtureOptions returns the optimiser options.
func (c Config) MixtureOptions() mixture.Options {
	return mixture.Options{
		MaxIterations: c.Mixture.MaxIterations,
		ScaleMin:      c.Mixture.ScaleMin,
		Penalty:       c.Mixture.Penalty,
		GradientStep:  c.Mixture.GradientStep,
		SkipPolish:    c.Mixture.SkipPolish,
	}
}

// Metric returns the parsed residual metric.
func (c Config) Metric() residual.Metric {
	m, err := residual.ParseMetric(c.Mixture.Metric)
	if err != nil {
		return residual.MetricRp
	}
	return m
}

// Strategy builds the configured refinement strategy.
func (c Config) Strategy() (refine.Strategy, error) {
	r := c.Refine
	return refine.NewStrategy(r.Strategy, refine.Options{
		MaxIterations:  r.MaxIterations,
		MaxEvaluations: r.MaxEvaluations,
		Population:     r.Population,
		Restarts:       r.Restarts,
		Workers:        r.Workers,
		Seed:           r.Seed,
		StepSize:       r.StepSize,
		Mutation:       r.Mutation,
		Crossover:      r.Crossover,
	})
}

// Model returns the stacking model for (R, G) with the configured
// tolerance: R3G2Tolerance for R3G2, Tolerance otherwise.
func (c Config) Model(reichweite, g int) (*probability.Model, error) {
	m, err := probability.New(reichweite, g)
	if err != nil {
		return nil, err
	}
	tol := c.Probability.Tolerance
	if reichweite == 3 && g == 2 {
		tol = c.Probability.R3G2Tolerance
	}
	m.SetTolerance(tol)
	return m, nil
}
