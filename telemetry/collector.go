// Package telemetry provides per-tick statistics, lineage tracking,
// phase timing, bookmarks and CSV output for the simulation.
package telemetry

// Collector accumulates agent events within a tick and produces TickStats.
type Collector struct {
	births          int
	mutations       int
	quiescent       int
	hypoxic         int
	hypoxicDeaths   int
	agedOut         int
	radiationMarked int
	radiationDeaths int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBirth records one daughter cell.
func (c *Collector) RecordBirth() { c.births++ }

// RecordMutation records a neutral mutation that founded a clade.
func (c *Collector) RecordMutation() { c.mutations++ }

// RecordQuiescent records a cell persisting without dividing.
func (c *Collector) RecordQuiescent() { c.quiescent++ }

// RecordHypoxic records a cell reading oxygen below the threshold.
func (c *Collector) RecordHypoxic() { c.hypoxic++ }

// RecordHypoxicDeath records a hypoxic cell that died.
func (c *Collector) RecordHypoxicDeath() { c.hypoxicDeaths++ }

// RecordAgedOut records a cell removed at the age limit.
func (c *Collector) RecordAgedOut() { c.agedOut++ }

// RecordRadiationMark records a cell newly flagged by a dose.
func (c *Collector) RecordRadiationMark() { c.radiationMarked++ }

// RecordRadiationDeath records a cell removed because of a dose.
func (c *Collector) RecordRadiationDeath() { c.radiationDeaths++ }

// Reset clears the event counters.
func (c *Collector) Reset() {
	*c = Collector{}
}

// Flush produces TickStats and resets counters for the next tick.
// The caller must provide:
// - tick: the agent tick that just completed
// - population: live cells after the tick
// - cladeCounts: live cells per clade
// - plane: oxygen values over the agent plane
// - cellOxygen: oxygen values at occupied sites
func (c *Collector) Flush(tick, population int, cladeCounts map[int]int, plane, cellOxygen []float64) TickStats {
	stats := TickStats{
		Tick:            tick,
		Population:      population,
		Births:          c.births,
		Mutations:       c.mutations,
		Quiescent:       c.quiescent,
		Hypoxic:         c.hypoxic,
		HypoxicDeaths:   c.hypoxicDeaths,
		AgedOut:         c.agedOut,
		RadiationMarked: c.radiationMarked,
		RadiationDeaths: c.radiationDeaths,
		ActiveClades:    len(cladeCounts),
		CladeEntropy:    CladeEntropy(cladeCounts),
	}

	stats.OxygenMean, stats.OxygenMin, stats.OxygenMax = FieldSummary(plane)
	stats.CellOxygenMin, stats.CellOxygenP10, stats.CellOxygenP50, stats.CellOxygenP90 = Quantiles(cellOxygen)

	c.Reset()
	return stats
}
