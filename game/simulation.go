package game

import (
	"log/slog"

	"github.com/pthm-cable/memic/components"
	"github.com/pthm-cable/memic/systems"
	"github.com/pthm-cable/memic/telemetry"
)

// RunStep advances the model by one agent tick: the agent pass (ending in
// the population swap), the oxygen sub-steps, then telemetry.
func (g *Game) RunStep() {
	g.perfCollector.StartTick()

	g.StepAgents()
	g.Tick()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	g.tick++
}

// Run executes RunStep for ticks 0 through total inclusive.
func (g *Game) Run(total int) {
	for u := 0; u <= total; u++ {
		g.RunStep()
	}
	slog.Info("run complete",
		"ticks", g.tick,
		"population", g.pop.Count(),
		"clades", g.lineage.Count(),
	)
}

// Tick relaxes the oxygen field for the configured number of sub-steps.
func (g *Game) Tick() {
	for i := 0; i < g.cfg.Oxygen.DiffusionStepsPerTimeStep; i++ {
		g.UpdateOxygen()
	}
}

// UpdateOxygen runs one sub-step: consumption and diffusion both fold into
// the next buffer before the swap, then the inflow face is restored.
func (g *Game) UpdateOxygen() {
	g.perfCollector.StartPhase(telemetry.PhaseConsumption)
	g.ConsumeBasal()

	g.perfCollector.StartPhase(telemetry.PhaseDiffusion)
	g.oxygen.Diffuse()

	g.perfCollector.StartPhase(telemetry.PhaseAdvance)
	g.oxygen.Advance()

	g.perfCollector.StartPhase(telemetry.PhaseInflow)
	g.ApplyBoundaryInflow()
}

// ConsumeBasal records Michaelis-Menten uptake for every occupied site.
func (g *Game) ConsumeBasal() {
	basal := g.cfg.Cell.BasalOxygenConsumption
	km := g.cfg.Oxygen.KM
	for id := 0; id < g.pop.Size(); id++ {
		if !g.pop.Occupied(id) {
			continue
		}
		x, y := systems.SiteCoords(id, g.width)
		c := g.oxygen.Get(x, y, 0)
		g.oxygen.DecrementNext(x, y, 0, basal*systems.MichaelisMenten(c, km))
	}
}

// ApplyBoundaryInflow holds the y = 0 row of the top layer at the inflow
// level. It writes the current buffer, after the clamp.
func (g *Game) ApplyBoundaryInflow() {
	level := g.cfg.Oxygen.InflowLevel
	top := g.depth - 1
	for x := 0; x < g.width; x++ {
		g.oxygen.Set(x, 0, top, level)
	}
}

// StepAgents applies the cell rule to every site in row-major order and
// swaps the population tables. Neighbor searches read the current table
// only, so daughters placed during the pass stay invisible until the swap.
func (g *Game) StepAgents() {
	cfg := g.config()

	if cfg.Radiation.Tick >= 0 && g.tick == cfg.Radiation.Tick {
		g.perfCollector.StartPhase(telemetry.PhaseRadiation)
		g.ApplyRadiation(cfg.Radiation.DoseCount, cfg.Radiation.DoseSize)
	}

	g.perfCollector.StartPhase(telemetry.PhaseAgents)
	for id := 0; id < g.pop.Size(); id++ {
		cell := g.pop.Get(id)
		if cell == nil {
			continue
		}
		x, y := systems.SiteCoords(id, g.width)

		if g.oxygen.Get(x, y, 0) < cfg.Oxygen.Threshold {
			cell.HIF1a = 1
			g.collector.RecordHypoxic()
			if chance(g.rng, cfg.Cell.HypoxiaDeathProb) {
				g.collector.RecordHypoxicDeath()
				continue
			}
			// No division under hypoxia
			g.quiesce(id, *cell)
			continue
		}

		cell.HIF1a = 0
		g.divide(id, x, y, *cell)
	}

	g.pop.Swap()
}

// divide attempts mitosis for the cell at id, falling back to quiescence.
// parent is a copy; placements invalidate component pointers.
func (g *Game) divide(id, x, y int, parent components.Cell) {
	cfg := g.config()

	g.openBuf = systems.OpenSites(g.openBuf, g.pop, x, y, g.width, g.height)
	if len(g.openBuf) == 0 {
		g.quiesce(id, parent)
		return
	}
	target := g.openBuf[g.rng.Intn(len(g.openBuf))]
	if !chance(g.rng, cfg.Cell.MitosisProb) {
		g.quiesce(id, parent)
		return
	}

	if parent.MarkedForDeath {
		g.collector.RecordRadiationDeath()
		return
	}

	g.oxygen.DecrementNext(x, y, 0, cfg.Cell.OxygenConsumptionDivision)

	// Daughter into the open site first, then one replacing the parent.
	for _, site := range [2]int{target, id} {
		d := parent.Daughter()
		g.mutate(&d)
		g.pop.Place(site, d)
		g.collector.RecordBirth()
		g.lineage.RecordBirth(parent.Clade, d.Clade, g.tick)
	}
}

// mutate resets a daughter's age and runs its neutral mutation trial.
// A mutant founds a new clade from the driver's counter.
func (g *Game) mutate(c *components.Cell) {
	c.Age = 0
	if chance(g.rng, g.cfg.Cell.NeutralMutationRate) {
		c.Clade = g.nextClade
		g.nextClade++
		g.collector.RecordMutation()
	}
}

// quiesce carries a cell into the next tick one tick older, unless that
// takes it to the age limit.
func (g *Game) quiesce(id int, c components.Cell) {
	c.Age++
	if c.AgedOut(g.cfg.Cell.AgeLimit) {
		g.collector.RecordAgedOut()
		return
	}
	g.collector.RecordQuiescent()
	g.pop.Place(id, c)
}

// ApplyRadiation gives every live cell doses fractions of doseSize Gy. A
// cell that fails its survival trial is marked for death, or removed at
// once when deferred death is off.
func (g *Game) ApplyRadiation(doses int, doseSize float64) {
	deferred := g.cfg.Radiation.DeferredDeath
	hit := 0
	for id := 0; id < g.pop.Size(); id++ {
		cell := g.pop.Get(id)
		if cell == nil || cell.MarkedForDeath {
			continue
		}
		x, y := systems.SiteCoords(id, g.width)
		survival := g.radiation.Survival(g.oxygen.Get(x, y, 0), doses, doseSize)
		if chance(g.rng, survival) {
			continue
		}

		hit++
		g.collector.RecordRadiationMark()
		if deferred {
			cell.MarkedForDeath = true
			continue
		}
		g.pop.Remove(id)
		g.collector.RecordRadiationDeath()
	}

	slog.Info("radiation dose",
		"tick", g.tick,
		"dose_count", doses,
		"dose_size", doseSize,
		"hit", hit,
		"deferred", deferred,
	)
}
