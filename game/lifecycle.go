package game

import (
	"log/slog"

	"github.com/pthm-cable/memic/components"
)

// initPopulation seeds the plane. A founder is injected at a random site,
// InitPopSize cells descended from its lineage are scattered over the other
// sites, and the founder itself is removed. On a single-site plane there is
// nowhere else to go and the founder stays.
func (g *Game) initPopulation() {
	cfg := g.config()
	sites := g.pop.Size()

	founder := components.Cell{Kind: components.KindTumor}
	founderSpot := g.rng.Intn(sites)
	g.pop.Inject(founderSpot, founder)
	g.lineage.RecordOrigin(founder.Clade, founder.Clade, g.tick)

	if sites == 1 {
		slog.Warn("single-site lattice, keeping founder only", "init_pop_size", cfg.World.InitPopSize)
		return
	}

	for i := 0; i < cfg.World.InitPopSize; i++ {
		spot := g.rng.Intn(sites)
		for spot == founderSpot {
			spot = g.rng.Intn(sites)
		}
		g.pop.Inject(spot, founder)
		g.lineage.RecordBirth(founder.Clade, founder.Clade, g.tick)
	}

	g.pop.Remove(founderSpot)
}
