package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TickStats holds aggregated statistics for one agent tick.
type TickStats struct {
	Tick       int `csv:"tick"`
	Population int `csv:"population"`

	// Events during the tick
	Births          int `csv:"births"`
	Mutations       int `csv:"mutations"`
	Quiescent       int `csv:"quiescent"`
	Hypoxic         int `csv:"hypoxic"`
	HypoxicDeaths   int `csv:"hypoxic_deaths"`
	AgedOut         int `csv:"aged_out"`
	RadiationMarked int `csv:"radiation_marked"`
	RadiationDeaths int `csv:"radiation_deaths"`

	// Lineage diversity among live cells
	ActiveClades int     `csv:"active_clades"`
	CladeEntropy float64 `csv:"clade_entropy"` // Shannon entropy, nats

	// Oxygen over the agent plane
	OxygenMean float64 `csv:"oxygen_mean"`
	OxygenMin  float64 `csv:"oxygen_min"`
	OxygenMax  float64 `csv:"oxygen_max"`

	// Oxygen at occupied sites
	CellOxygenMin float64 `csv:"cell_oxygen_min"`
	CellOxygenP10 float64 `csv:"cell_oxygen_p10"`
	CellOxygenP50 float64 `csv:"cell_oxygen_p50"`
	CellOxygenP90 float64 `csv:"cell_oxygen_p90"`
}

// FieldSummary returns mean, min and max of a field slice. An empty slice
// yields zeros.
func FieldSummary(values []float64) (mean, lo, hi float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	return stat.Mean(values, nil), floats.Min(values), floats.Max(values)
}

// Quantiles returns min, p10, p50 and p90 of values using the empirical
// CDF. values is not modified.
func Quantiles(values []float64) (lo, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo = sorted[0]
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return lo, p10, p50, p90
}

// CladeEntropy returns the Shannon entropy (nats) of a clade census.
func CladeEntropy(counts map[int]int) float64 {
	var total int
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	// Fixed order keeps the float sum reproducible across runs.
	clades := make([]int, 0, len(counts))
	for id := range counts {
		clades = append(clades, id)
	}
	sort.Ints(clades)
	p := make([]float64, len(clades))
	for i, id := range clades {
		p[i] = float64(counts[id]) / float64(total)
	}
	return stat.Entropy(p)
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Int("population", s.Population),
		slog.Int("births", s.Births),
		slog.Int("mutations", s.Mutations),
		slog.Int("quiescent", s.Quiescent),
		slog.Int("hypoxic", s.Hypoxic),
		slog.Int("hypoxic_deaths", s.HypoxicDeaths),
		slog.Int("aged_out", s.AgedOut),
		slog.Int("radiation_marked", s.RadiationMarked),
		slog.Int("radiation_deaths", s.RadiationDeaths),
		slog.Int("active_clades", s.ActiveClades),
		slog.Float64("clade_entropy", s.CladeEntropy),
		slog.Float64("oxygen_mean", s.OxygenMean),
		slog.Float64("oxygen_min", s.OxygenMin),
		slog.Float64("oxygen_max", s.OxygenMax),
		slog.Float64("cell_oxygen_min", s.CellOxygenMin),
		slog.Float64("cell_oxygen_p50", s.CellOxygenP50),
	)
}

// LogStats logs the tick stats using slog.
func (s TickStats) LogStats() {
	slog.Info("stats",
		"tick", s.Tick,
		"population", s.Population,
		"births", s.Births,
		"mutations", s.Mutations,
		"hypoxic", s.Hypoxic,
		"hypoxic_deaths", s.HypoxicDeaths,
		"aged_out", s.AgedOut,
		"radiation_marked", s.RadiationMarked,
		"radiation_deaths", s.RadiationDeaths,
		"active_clades", s.ActiveClades,
		"clade_entropy", s.CladeEntropy,
		"oxygen_mean", s.OxygenMean,
		"cell_oxygen_p10", s.CellOxygenP10,
		"cell_oxygen_p50", s.CellOxygenP50,
		"cell_oxygen_p90", s.CellOxygenP90,
	)
}
