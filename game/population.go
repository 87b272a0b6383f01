package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/memic/components"
)

// slot is one lattice site's entry in a site table.
type slot struct {
	entity ecs.Entity
	ok     bool
}

// Population is the grid-structured occupancy store for the agent plane.
// Every live cell is an ECS entity. Two site tables map lattice ids to
// entities: current is what an agent pass reads, pending collects the
// placements for the next tick. Swap promotes pending to current, so
// nothing placed during a pass is visible to neighbor searches in it.
//
// Component pointers returned by Get are invalidated by any later
// placement or removal; copy the value before mutating the population.
type Population struct {
	world  *ecs.World
	cells  *ecs.Map1[components.Cell]
	filter *ecs.Filter1[components.Cell]

	current []slot
	pending []slot
}

// NewPopulation creates an empty population over size sites.
func NewPopulation(size int) *Population {
	world := ecs.NewWorld()
	return &Population{
		world:   world,
		cells:   ecs.NewMap1[components.Cell](world),
		filter:  ecs.NewFilter1[components.Cell](world),
		current: make([]slot, size),
		pending: make([]slot, size),
	}
}

// Size returns the number of lattice sites.
func (p *Population) Size() int { return len(p.current) }

// Occupied reports whether a site holds a cell in the current table.
func (p *Population) Occupied(id int) bool { return p.current[id].ok }

// Get returns the current cell at a site, or nil if the site is empty.
func (p *Population) Get(id int) *components.Cell {
	s := p.current[id]
	if !s.ok {
		return nil
	}
	return p.cells.Get(s.entity)
}

// GetPending returns the cell placed at a site for the next tick, or nil.
func (p *Population) GetPending(id int) *components.Cell {
	s := p.pending[id]
	if !s.ok {
		return nil
	}
	return p.cells.Get(s.entity)
}

// Inject writes a cell into the current table, evicting any occupant.
func (p *Population) Inject(id int, c components.Cell) {
	p.put(p.current, id, c)
}

// Place writes a cell into the pending table, evicting any earlier placement.
func (p *Population) Place(id int, c components.Cell) {
	p.put(p.pending, id, c)
}

func (p *Population) put(table []slot, id int, c components.Cell) {
	p.release(table, id)
	table[id] = slot{entity: p.cells.NewEntity(&c), ok: true}
}

// Remove deletes the current cell at a site, if any.
func (p *Population) Remove(id int) {
	p.release(p.current, id)
}

func (p *Population) release(table []slot, id int) {
	if s := table[id]; s.ok {
		p.world.RemoveEntity(s.entity)
		table[id] = slot{}
	}
}

// Swap retires every current cell and promotes the pending table. Cells
// that were not placed during the pass are gone after this call.
func (p *Population) Swap() {
	for id := range p.current {
		p.release(p.current, id)
	}
	p.current, p.pending = p.pending, p.current
}

// Count returns the number of occupied sites in the current table.
func (p *Population) Count() int {
	n := 0
	for _, s := range p.current {
		if s.ok {
			n++
		}
	}
	return n
}

// Clear removes every cell from both tables.
func (p *Population) Clear() {
	for id := range p.current {
		p.release(p.current, id)
		p.release(p.pending, id)
	}
}

// CladeCounts returns the number of live cells per clade. It walks every
// cell entity, so call it between passes when pending is empty.
func (p *Population) CladeCounts() map[int]int {
	counts := make(map[int]int)
	query := p.filter.Query()
	for query.Next() {
		c := query.Get()
		counts[c.Clade]++
	}
	return counts
}
