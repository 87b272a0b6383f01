// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Cell      CellConfig      `yaml:"cell"`
	Oxygen    OxygenConfig    `yaml:"oxygen"`
	Radiation RadiationConfig `yaml:"radiation"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the physical plate geometry and run length.
// Lattice extents are derived from the plate size and cell diameter.
type WorldConfig struct {
	TimeSteps    int     `yaml:"time_steps"`
	PlateLength  float64 `yaml:"plate_length"`  // mm, maps to Y
	PlateWidth   float64 `yaml:"plate_width"`   // mm, maps to X
	PlateDepth   float64 `yaml:"plate_depth"`   // mm, maps to Z
	CellDiameter float64 `yaml:"cell_diameter"` // microns
	InitPopSize  int     `yaml:"init_pop_size"`
}

// CellConfig holds per-cell division, death and consumption parameters.
type CellConfig struct {
	NeutralMutationRate       float64 `yaml:"neutral_mutation_rate"` // only relevant for phylogenetic signal
	MitosisProb               float64 `yaml:"mitosis_prob"`
	HypoxiaDeathProb          float64 `yaml:"hypoxia_death_prob"`
	AgeLimit                  int     `yaml:"age_limit"` // <= 0 disables aging out
	BasalOxygenConsumption    float64 `yaml:"basal_oxygen_consumption"`
	OxygenConsumptionDivision float64 `yaml:"oxygen_consumption_division"`
}

// OxygenConfig holds resource field parameters.
type OxygenConfig struct {
	InitialLevel              float64 `yaml:"initial_level"`
	DiffusionCoefficient      float64 `yaml:"diffusion_coefficient"`
	DiffusionStepsPerTimeStep int     `yaml:"diffusion_steps_per_time_step"`
	Threshold                 float64 `yaml:"threshold"` // hypoxia below this
	KM                        float64 `yaml:"km"`        // Michaelis-Menten constant
	Periodic                  bool    `yaml:"periodic"`
	InflowLevel               float64 `yaml:"inflow_level"`
	InitialNoise              float64 `yaml:"initial_noise"` // relative amplitude, 0 = uniform
	NoiseScale                float64 `yaml:"noise_scale"`   // sites per noise feature
}

// RadiationConfig holds the one-time dose event and the linear-quadratic / OER constants.
type RadiationConfig struct {
	Tick          int     `yaml:"tick"` // agent tick of the dose event, < 0 disables
	DoseCount     int     `yaml:"dose_count"`
	DoseSize      float64 `yaml:"dose_size"` // Gy per fraction
	Alpha         float64 `yaml:"alpha"`
	Beta          float64 `yaml:"beta"`
	OERMax        float64 `yaml:"oer_max"`
	OERK          float64 `yaml:"oer_k"`         // mmHg at half-maximal enhancement
	MMHgPerUnit   float64 `yaml:"mmhg_per_unit"` // converts field units to oxygen tension
	DeferredDeath bool    `yaml:"deferred_death"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsEvery          int `yaml:"stats_every"` // ticks between logged stats
	PerfWindow          int `yaml:"perf_window"`
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	HypoxicFraction    float64 `yaml:"hypoxic_fraction"`    // hypoxic / population
	ConfluenceFraction float64 `yaml:"confluence_fraction"` // population / sites
	CrashDropPercent   float64 `yaml:"crash_drop_percent"`
	CrashMinDrop       int     `yaml:"crash_min_drop"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldX int // lattice extent along plate width
	WorldY int // lattice extent along plate length
	WorldZ int // lattice extent along plate depth
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// ComputeDerived recalculates the lattice extents. Call it after changing
// the world geometry programmatically.
func (c *Config) ComputeDerived() {
	cellMM := c.World.CellDiameter / 1000
	c.Derived.WorldX = cellsAcross(c.World.PlateWidth, cellMM)
	c.Derived.WorldY = cellsAcross(c.World.PlateLength, cellMM)
	c.Derived.WorldZ = cellsAcross(c.World.PlateDepth, cellMM)
}

// cellsAcross returns how many whole cells fit along a plate edge. A small
// tolerance keeps exact multiples (6mm / 0.2mm) from flooring one short.
func cellsAcross(lengthMM, cellMM float64) int {
	if cellMM <= 0 {
		return 0
	}
	return int(math.Floor(lengthMM/cellMM + 1e-9))
}

// Sites returns the number of lattice sites in the agent plane.
func (c *Config) Sites() int {
	return c.Derived.WorldX * c.Derived.WorldY
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
