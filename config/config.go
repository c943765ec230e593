// Package config loads the run configuration of the gpr command
// from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"bitbucket.org/dtolpin/gpr/gpr"
	"bitbucket.org/dtolpin/gpr/kernel"
	"bitbucket.org/dtolpin/gpr/model"
	"bitbucket.org/dtolpin/gpr/priors"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of an interpolation run.
type Config struct {
	// Kernel is one of kernel.Names.
	Kernel string `yaml:"kernel"`
	// Theta are the initial hyperparameters; kernel defaults
	// are used when empty.
	Theta []float64 `yaml:"theta"`
	// Jitter overrides gpr.Jitter when set.
	Jitter *float64 `yaml:"jitter"`
	// Variance requests the predictive variance.
	Variance bool           `yaml:"variance"`
	Optimize OptimizeConfig `yaml:"optimize"`
}

// OptimizeConfig configures hyperparameter optimization.
type OptimizeConfig struct {
	Enabled bool `yaml:"enabled"`
	// Iterations bounds the number of major iterations; an explicit
	// 0 runs until convergence, unset means DefaultIterations.
	Iterations        *int    `yaml:"iterations"`
	GradientThreshold float64 `yaml:"gradient_threshold"`
	Priors            bool    `yaml:"priors"`
}

// Defaults.
const (
	DefaultKernel     = "se"
	DefaultIterations = 100
)

// ErrInvalid is returned for configurations failing validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads, completes and validates the configuration in a
// YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, completes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Kernel == "" {
		cfg.Kernel = DefaultKernel
	}
	if cfg.Optimize.Iterations == nil {
		n := DefaultIterations
		cfg.Optimize.Iterations = &n
	}
}

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	if _, err := kernel.ByName(cfg.Kernel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, v := range cfg.Theta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: theta[%d] is %v", ErrInvalid, i, v)
		}
	}
	if cfg.Jitter != nil && (*cfg.Jitter < 0 || math.IsNaN(*cfg.Jitter) || math.IsInf(*cfg.Jitter, 0)) {
		return fmt.Errorf("%w: jitter is %v", ErrInvalid, *cfg.Jitter)
	}
	if n := cfg.Optimize.Iterations; n != nil && *n < 0 {
		return fmt.Errorf("%w: optimize.iterations is %d", ErrInvalid, *n)
	}
	if cfg.Optimize.GradientThreshold < 0 {
		return fmt.Errorf("%w: optimize.gradient_threshold is %v",
			ErrInvalid, cfg.Optimize.GradientThreshold)
	}
	return nil
}

// Options returns the numerical options of the configuration.
func (cfg *Config) Options() []gpr.Option {
	if cfg.Jitter == nil {
		return nil
	}
	return []gpr.Option{gpr.WithJitter(*cfg.Jitter)}
}

// Evaluator returns the kernel evaluator.
func (cfg *Config) Evaluator() (gpr.Evaluator, error) {
	return kernel.ByName(cfg.Kernel)
}

// Want returns what interpolation computes.
func (cfg *Config) Want() gpr.Want {
	if cfg.Variance {
		return gpr.MeanAndCovariance
	}
	return gpr.MeanOnly
}

// Optimizer returns the hyperparameter optimizer.
func (cfg *Config) Optimizer() *model.Optimizer {
	o := &model.Optimizer{
		GradientThreshold: cfg.Optimize.GradientThreshold,
		Options:           cfg.Options(),
	}
	if cfg.Optimize.Iterations != nil {
		o.Iterations = *cfg.Optimize.Iterations
	}
	if cfg.Optimize.Priors {
		o.Priors = func(n int) priors.Priors { return priors.Default(n) }
	}
	return o
}
