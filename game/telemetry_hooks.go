package game

import (
	"log/slog"

	"github.com/pthm-cable/memic/systems"
)

// flushTelemetry closes out the tick's stats and handles logging, CSV
// output and bookmarks.
func (g *Game) flushTelemetry() {
	plane, cellOxygen := g.sampleOxygen()

	stats := g.collector.Flush(g.tick, g.pop.Count(), g.pop.CladeCounts(), plane, cellOxygen)
	g.lastStats = stats

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	periodic := g.statsEvery > 0 && g.tick%g.statsEvery == 0

	if g.logStats && periodic {
		stats.LogStats()
		g.perfCollector.Stats().LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if periodic {
			if err := g.outputManager.WritePerf(g.perfCollector.Stats(), g.tick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		bm.LogBookmark()
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sampleOxygen returns the oxygen values of the agent plane and of the
// occupied sites in it.
func (g *Game) sampleOxygen() (plane, cellOxygen []float64) {
	plane = make([]float64, 0, g.pop.Size())
	for id := 0; id < g.pop.Size(); id++ {
		x, y := systems.SiteCoords(id, g.width)
		c := g.oxygen.Get(x, y, 0)
		plane = append(plane, c)
		if g.pop.Occupied(id) {
			cellOxygen = append(cellOxygen, c)
		}
	}
	return plane, cellOxygen
}
