package lcp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses a YAML configuration file. Omitted fields keep
// their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config, err := ParseConfigYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// ParseConfigYAML parses YAML on top of DefaultConfig and validates the
// result. Unknown keys are rejected.
//
// Example document:
//
//	walkers: 64
//	samples: 600
//	burn_in: 200
//	workers: 4
//	random_seed: 7
//	bounds:
//	  lower: [0, 0, 0, 1]
//	  upper: [1, 1, 1, 2]
func ParseConfigYAML(data []byte) (Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks every knob of the configuration. The dimensionality of theta
// is taken from InitialTheta; the bounds must cover all but its last entry.
func (c Config) Validate() error {
	dim := len(c.InitialTheta)

	switch {
	case dim < 2:
		return fmt.Errorf("%w: initial_theta needs curve parameters and sigma, got %d values", ErrInvalidConfig, dim)
	case c.Walkers < 2 || c.Walkers%2 != 0:
		return fmt.Errorf("%w: walkers must be a positive even number, got %d", ErrInvalidConfig, c.Walkers)
	case c.Walkers < 2*dim:
		return fmt.Errorf("%w: walkers (%d) must be at least twice the dimensionality (%d)", ErrInvalidConfig, c.Walkers, dim)
	case c.SampleCount < 1:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, c.SampleCount)
	case c.MaxSteps < 0:
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalidConfig, c.MaxSteps)
	case c.BurnIn < 0:
		return fmt.Errorf("%w: burn_in must not be negative, got %d", ErrInvalidConfig, c.BurnIn)
	case c.Thin < 1:
		return fmt.Errorf("%w: thin must be at least 1, got %d", ErrInvalidConfig, c.Thin)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case !(c.StretchScale > 1):
		return fmt.Errorf("%w: stretch_scale must be greater than 1, got %v", ErrInvalidConfig, c.StretchScale)
	case !(c.Jitter > 0):
		return fmt.Errorf("%w: jitter must be positive, got %v", ErrInvalidConfig, c.Jitter)
	case c.ProbePoints < 2:
		return fmt.Errorf("%w: probe_points must be at least 2, got %d", ErrInvalidConfig, c.ProbePoints)
	}

	for i, v := range c.InitialTheta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: initial_theta[%d] is not finite", ErrInvalidConfig, i)
		}
	}

	if len(c.Bounds.Lower) != dim-1 || len(c.Bounds.Upper) != dim-1 {
		return fmt.Errorf("%w: bounds need %d lower and upper values, got %d and %d",
			ErrInvalidConfig, dim-1, len(c.Bounds.Lower), len(c.Bounds.Upper))
	}

	for i := range c.Bounds.Lower {
		if !(c.Bounds.Lower[i] <= c.Bounds.Upper[i]) {
			return fmt.Errorf("%w: bounds[%d] lower %v is above upper %v",
				ErrInvalidConfig, i, c.Bounds.Lower[i], c.Bounds.Upper[i])
		}
	}

	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: invalid log_level: %s (must be debug, info, warn, or error)", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}

// Rand returns a new random source seeded with RandomSeed. There is no
// implicit seed: an unset RandomSeed is an error.
func (c Config) Rand() (*rand.Rand, error) {
	if c.RandomSeed == nil {
		return nil, fmt.Errorf("%w: random_seed is not set", ErrInvalidConfig)
	}

	return rand.New(rand.NewSource(*c.RandomSeed)), nil
}
