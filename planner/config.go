package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/choreo"
)

// Strategy selects how agents are assigned to targets.
type Strategy int8

const (
	Hungarian Strategy = iota // optimal assignment
	Greedy                    // smallest remaining distance first
)

func (s Strategy) String() string {
	switch s {
	case Hungarian:
		return "hungarian"
	case Greedy:
		return "greedy"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Config holds the parameters of a planning run. Lengths are world units
// (meters), times are seconds.
type Config struct {
	CellSize      float64 // edge length of a grid cell
	MaxVelocity   float64 // distance an agent may cover per second
	Timestep      float64 // duration of a discrete step
	MaxIterations int     // step cap of a run
	Padding       float64 // margin around agents and targets
	Strategy      Strategy
	// Simplify enables dropping merged nodes which lie on a constant speed
	// line between their neighbours, within SimplifyTolerance.
	Simplify          bool
	SimplifyTolerance float64
	Obstacles         []choreo.Box // static, kept clear during the whole run
}

// DefaultConfig returns the standard planner parameters. The timestep lets
// an agent at full speed cross exactly one cell per step.
func DefaultConfig() Config {
	return Config{
		CellSize:          0.0625,
		MaxVelocity:       0.5,
		Timestep:          0.125,
		MaxIterations:     2000,
		Padding:           0.75,
		Strategy:          Hungarian,
		SimplifyTolerance: 0.01,
	}
}

// StepDistance is the distance an agent may travel in one step.
func (cfg Config) StepDistance() float64 {
	return cfg.MaxVelocity * cfg.Timestep
}

// Validate checks that the configuration values are usable.
func (cfg Config) Validate() error {
	switch {
	case !(cfg.CellSize > 0):
		return fmt.Errorf("%w: cell size must be positive, got %g", ErrInvalidConfig, cfg.CellSize)
	case !(cfg.MaxVelocity > 0):
		return fmt.Errorf("%w: max velocity must be positive, got %g", ErrInvalidConfig, cfg.MaxVelocity)
	case !(cfg.Timestep > 0):
		return fmt.Errorf("%w: timestep must be positive, got %g", ErrInvalidConfig, cfg.Timestep)
	case cfg.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidConfig, cfg.MaxIterations)
	case !(cfg.Padding >= 0):
		return fmt.Errorf("%w: padding must not be negative, got %g", ErrInvalidConfig, cfg.Padding)
	case cfg.Strategy != Hungarian && cfg.Strategy != Greedy:
		return fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, cfg.Strategy)
	case !(cfg.SimplifyTolerance >= 0):
		return fmt.Errorf("%w: simplify tolerance must not be negative, got %g", ErrInvalidConfig, cfg.SimplifyTolerance)
	}
	for i, b := range cfg.Obstacles {
		if !b.Min.IsFinite() || !b.Max.IsFinite() {
			return fmt.Errorf("%w: obstacle %d is not finite", ErrInvalidConfig, i)
		}
	}
	return nil
}

// fileConfig is the JSON form of Config. Omitted fields keep their
// default values.
type fileConfig struct {
	CellSize          *float64  `json:"cell_size,omitempty"`
	MaxVelocity       *float64  `json:"max_velocity,omitempty"`
	Timestep          *float64  `json:"timestep,omitempty"`
	MaxIterations     *int      `json:"max_iterations,omitempty"`
	Padding           *float64  `json:"padding,omitempty"`
	Strategy          *string   `json:"strategy,omitempty"`
	Simplify          *bool     `json:"simplify,omitempty"`
	SimplifyTolerance *float64  `json:"simplify_tolerance,omitempty"`
	Obstacles         []fileBox `json:"obstacles,omitempty"`
}

type fileBox struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

const maxConfigSize = 1 << 20

// LoadConfig loads a planner configuration from a JSON file with .json
// extension, overlaying the values found onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := fc.overlay(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	tracer().Debugf("loaded planner config from %s", cleanPath)
	return cfg, nil
}

func (fc fileConfig) overlay(cfg *Config) error {
	if fc.CellSize != nil {
		cfg.CellSize = *fc.CellSize
	}
	if fc.MaxVelocity != nil {
		cfg.MaxVelocity = *fc.MaxVelocity
	}
	if fc.Timestep != nil {
		cfg.Timestep = *fc.Timestep
	}
	if fc.MaxIterations != nil {
		cfg.MaxIterations = *fc.MaxIterations
	}
	if fc.Padding != nil {
		cfg.Padding = *fc.Padding
	}
	if fc.Strategy != nil {
		s, err := ParseStrategy(*fc.Strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = s
	}
	if fc.Simplify != nil {
		cfg.Simplify = *fc.Simplify
	}
	if fc.SimplifyTolerance != nil {
		cfg.SimplifyTolerance = *fc.SimplifyTolerance
	}
	for _, b := range fc.Obstacles {
		cfg.Obstacles = append(cfg.Obstacles, choreo.Box{
			Min: choreo.V(b.Min[0], b.Min[1], b.Min[2]),
			Max: choreo.V(b.Max[0], b.Max[1], b.Max[2]),
		})
	}
	return nil
}

// ParseStrategy maps "hungarian" or "greedy" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "hungarian", "":
		return Hungarian, nil
	case "greedy":
		return Greedy, nil
	}
	return Hungarian, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
}
