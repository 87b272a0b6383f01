package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/memic/config"
	"github.com/pthm-cable/memic/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output per-tick stats via slog")
	statsEvery := flag.Int("stats-every", 0, "Ticks between logged stats (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Last tick to run (0 = world.time_steps)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ticks := *maxTicks
	if ticks <= 0 {
		ticks = cfg.World.TimeSteps
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:       rngSeed,
		LogStats:   *logStats,
		StatsEvery: *statsEvery,
		OutputDir:  *outputDir,
	})
	if err != nil {
		slog.Error("failed to set up simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", ticks,
		"output_dir", g.OutputDir(),
	)

	start := time.Now()
	g.Run(ticks)

	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
	slog.Info("finished", "elapsed_ms", time.Since(start).Milliseconds())
}
