package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/memic/config"
	"github.com/pthm-cable/memic/systems"
	"github.com/pthm-cable/memic/telemetry"
)

// Options configures game creation.
type Options struct {
	Seed       int64
	Config     *config.Config // nil uses config.Cfg()
	LogStats   bool
	StatsEvery int    // ticks between logged stats, 0 uses config
	OutputDir  string // empty disables CSV output

	// StatsCallback, if set, receives the stats of every completed tick.
	StatsCallback func(telemetry.TickStats)
}

// Game couples the oxygen field to the cell population and drives both.
type Game struct {
	cfg     *config.Config
	rng     RNG
	rngSeed int64

	// Lattice extents
	width, height, depth int

	oxygen    *systems.Gradient
	pop       *Population
	radiation systems.RadiationModel

	// State
	tick      int
	nextClade int
	openBuf   []int // scratch for division site search

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lineage          *telemetry.LineageTracker
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.TickStats)
	logStats         bool
	statsEvery       int
	lastStats        telemetry.TickStats
}

// NewGameWithOptions creates a game and runs Setup with the chosen config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	statsEvery := opts.StatsEvery
	if statsEvery <= 0 {
		statsEvery = cfg.Telemetry.StatsEvery
	}

	g := &Game{
		rng:           NewRNG(opts.Seed),
		rngSeed:       opts.Seed,
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		statsEvery:    statsEvery,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om

	if err := g.Setup(cfg); err != nil {
		om.Close()
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	return g, nil
}

// Setup builds the oxygen field and seeds the population from cfg.
// It continues from the game's current RNG state; use Reset to replay.
func (g *Game) Setup(cfg *config.Config) error {
	cfg.ComputeDerived()
	x, y, z := cfg.Derived.WorldX, cfg.Derived.WorldY, cfg.Derived.WorldZ

	field, err := systems.NewGradient(x, y, z)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	k := cfg.Oxygen.DiffusionCoefficient
	if k < 0 {
		return fmt.Errorf("setup: k=%v: %w", k, systems.ErrInvalidCoefficient)
	}
	if limit := field.StabilityLimit(); k > limit {
		slog.Warn("diffusion coefficient above stability limit", "k", k, "limit", limit)
	}
	field.SetDiffusionCoefficient(k)
	field.SetBoundaryMode(cfg.Oxygen.Periodic)
	field.Fill(cfg.Oxygen.InitialLevel)
	field.Perturb(g.rngSeed, cfg.Oxygen.InitialNoise, cfg.Oxygen.NoiseScale)

	g.cfg = cfg
	g.width, g.height, g.depth = x, y, z
	g.oxygen = field
	g.pop = NewPopulation(cfg.Sites())
	g.radiation = systems.RadiationModel{
		Alpha:       cfg.Radiation.Alpha,
		Beta:        cfg.Radiation.Beta,
		OERMax:      cfg.Radiation.OERMax,
		OERK:        cfg.Radiation.OERK,
		MMHgPerUnit: cfg.Radiation.MMHgPerUnit,
	}
	g.tick = 0
	g.nextClade = 1
	g.openBuf = make([]int, 0, 9)
	g.lastStats = telemetry.TickStats{}

	g.collector = telemetry.NewCollector()
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.lineage = telemetry.NewLineageTracker()
	g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Bookmarks, cfg.Sites(), cfg.Telemetry.BookmarkHistorySize)

	g.initPopulation()

	slog.Info("setup complete",
		"world_x", x,
		"world_y", y,
		"world_z", z,
		"boundary", field.Boundary().String(),
		"population", g.pop.Count(),
	)
	return nil
}

// Reset reseeds the RNG with the game's original seed and runs Setup, so a
// reset game replays the same trajectory.
func (g *Game) Reset(cfg *config.Config) error {
	g.rng = NewRNG(g.rngSeed)
	return g.Setup(cfg)
}

// config returns the active configuration.
func (g *Game) config() *config.Config {
	return g.cfg
}

// CurrentTick returns the number of completed agent ticks.
func (g *Game) CurrentTick() int {
	return g.tick
}

// Extents returns the lattice size. Cells occupy the z = 0 plane.
func (g *Game) Extents() (x, y, z int) {
	return g.width, g.height, g.depth
}

// Oxygen returns the oxygen field.
func (g *Game) Oxygen() *systems.Gradient {
	return g.oxygen
}

// Population returns the cell population.
func (g *Game) Population() *Population {
	return g.pop
}

// Lineage returns the clade tracker.
func (g *Game) Lineage() *telemetry.LineageTracker {
	return g.lineage
}

// Stats returns the stats of the last completed tick.
func (g *Game) Stats() telemetry.TickStats {
	return g.lastStats
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// OutputDir returns the CSV output directory, empty when output is disabled.
func (g *Game) OutputDir() string {
	return g.outputManager.Dir()
}

// InjectOxygen sets the oxygen level at (x, y) on the agent plane in both
// buffers, so the value survives pending consumption in the current step.
func (g *Game) InjectOxygen(x, y int, level float64) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		slog.Warn("oxygen injection outside lattice", "x", x, "y", y)
		return
	}
	g.oxygen.Set(x, y, 0, level)
	g.oxygen.SetNext(x, y, 0, level)
}

// Close writes the clade table and closes output files.
func (g *Game) Close() error {
	if err := g.outputManager.WriteClades(g.lineage); err != nil {
		slog.Error("failed to write clades", "error", err)
	}
	return g.outputManager.Close()
}
