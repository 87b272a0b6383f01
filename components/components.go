// Package components defines ECS components for the simulation.
package components

// Kind tags a cell's population. The division rule treats every kind alike.
type Kind uint8

const (
	KindTumor Kind = iota
	KindHealthy
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindTumor:
		return "tumor"
	case KindHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// Cell is one agent occupying a site of the 2D population lattice.
type Cell struct {
	Kind     Kind
	Stemness float64 // heritable; target of asymmetric division
	Age      int     // ticks since creation or last division
	Clade    int     // lineage id, reassigned by neutral mutation
	HIF1a    float64 // hypoxia marker: 1 while hypoxic, 0 otherwise

	// MarkedForDeath is set by a radiation dose. A marked cell dies the
	// next time it would otherwise divide.
	MarkedForDeath bool
}

// Daughter returns a copy of c with its age reset, as produced by mitosis.
func (c Cell) Daughter() Cell {
	d := c
	d.Age = 0
	return d
}

// AgedOut reports whether c has reached the age limit. A non-positive
// limit disables aging out.
func (c Cell) AgedOut(limit int) bool {
	return limit > 0 && c.Age >= limit
}
