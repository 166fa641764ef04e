// Package config provides the engine configuration. A Config is an
// explicit value threaded into every call, never process-wide mutable
// state, so the engine can be reused across concurrent model snapshots.
// Settings load from a YAML file layered over defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpache/ferrite/pkg/standards"
)

// DefaultTolerance is the "same point" radius in mm. Every resolver and
// rule-engine comparison uses this one scalar so behavior is consistent.
const DefaultTolerance = 10.0

// DefaultMaxIterations bounds the detect-correct cycle.
const DefaultMaxIterations = 5

// DefaultPlateStandOff is the distance in mm an intermediate connection
// plate sits along the member axis from its joint. Base plates at a
// support use zero offset.
const DefaultPlateStandOff = 20.0

// Config holds all settings for one engine run.
type Config struct {
	// Tolerance is the maximum distance in mm at which two points are
	// considered the same location.
	Tolerance float64 `yaml:"tolerance"`

	// MaxIterations caps the detect-correct convergence loop. Exceeding
	// it surfaces a residual clash report instead of looping.
	MaxIterations int `yaml:"max_iterations"`

	// PlateStandOff is the intermediate-plate offset along the member
	// axis in mm.
	PlateStandOff float64 `yaml:"plate_stand_off"`

	// SuspectOriginJoints enables the heuristic that treats a joint set
	// entirely at the coordinate origin as never computed. Disable for
	// legitimately origin-centered structures; suspicious joints are
	// then only flagged, never overwritten.
	SuspectOriginJoints bool `yaml:"suspect_origin_joints"`

	// Standards are the connection standards tables.
	Standards standards.Table `yaml:"standards"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Tolerance:           DefaultTolerance,
		MaxIterations:       DefaultMaxIterations,
		PlateStandOff:       DefaultPlateStandOff,
		SuspectOriginJoints: true,
		Standards:           standards.Default(),
	}
}

// Load reads a YAML file and layers it over Default. Fields absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	var errs []error
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("config: tolerance must be positive, got %g", c.Tolerance))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("config: max_iterations must be at least 1, got %d", c.MaxIterations))
	}
	if c.PlateStandOff < 0 {
		errs = append(errs, fmt.Errorf("config: plate_stand_off must not be negative, got %g", c.PlateStandOff))
	}
	if len(c.Standards.BoltDiameters) == 0 {
		errs = append(errs, errors.New("config: standards bolt diameter set is empty"))
	}
	return errors.Join(errs...)
}
