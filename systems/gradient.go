package systems

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when a lattice extent is not positive.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrDimensionMismatch is returned when a seed grid is ragged.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidCoefficient is returned for a negative diffusion coefficient.
	ErrInvalidCoefficient = errors.New("invalid diffusion coefficient")
)

// Boundary selects how sites off the lattice edge are resolved.
type Boundary uint8

const (
	// BoundaryReflecting substitutes the focal value for a missing neighbor (zero flux).
	BoundaryReflecting Boundary = iota
	// BoundaryPeriodic wraps every axis (toroidal lattice).
	BoundaryPeriodic
)

func (b Boundary) String() string {
	if b == BoundaryPeriodic {
		return "periodic"
	}
	return "reflecting"
}

// Gradient is a double-buffered scalar field over a regular 1-3D lattice.
// Reads during a step come from the current buffer; consumption and the
// diffusion result accumulate in the next buffer until Advance swaps them.
//
// Coordinates are not range checked unless the package is built with the
// debug tag; the stencil visits every site on every sub-step.
type Gradient struct {
	X, Y, Z int

	dims     int // active spatial dimensions (1-3)
	cur      []float64
	next     []float64
	k        float64
	boundary Boundary
}

// NewGradient allocates a zeroed field of the given extents.
func NewGradient(x, y, z int) (*Gradient, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("gradient %dx%dx%d: %w", x, y, z, ErrInvalidDimension)
	}
	n := x * y * z
	g := &Gradient{
		X: x, Y: y, Z: z,
		cur:  make([]float64, n),
		next: make([]float64, n),
	}
	switch {
	case z > 1:
		g.dims = 3
	case y > 1:
		g.dims = 2
	default:
		g.dims = 1
	}
	return g, nil
}

// NewGradientFrom builds a field from a grid indexed [z][y][x]. Values are
// copied into the current buffer; the next buffer starts at zero.
func NewGradientFrom(grid [][][]float64) (*Gradient, error) {
	if len(grid) == 0 || len(grid[0]) == 0 || len(grid[0][0]) == 0 {
		return nil, fmt.Errorf("seed grid is empty: %w", ErrInvalidDimension)
	}
	z, y, x := len(grid), len(grid[0]), len(grid[0][0])
	for zi, plane := range grid {
		if len(plane) != y {
			return nil, fmt.Errorf("plane %d has %d rows, want %d: %w", zi, len(plane), y, ErrDimensionMismatch)
		}
		for yi, row := range plane {
			if len(row) != x {
				return nil, fmt.Errorf("row (%d,%d) has %d values, want %d: %w", zi, yi, len(row), x, ErrDimensionMismatch)
			}
		}
	}

	g, err := NewGradient(x, y, z)
	if err != nil {
		return nil, err
	}
	i := 0
	for _, plane := range grid {
		for _, row := range plane {
			i += copy(g.cur[i:], row)
		}
	}
	return g, nil
}

// NewGradientFrom2D builds a single-plane field from a grid indexed [y][x].
func NewGradientFrom2D(grid [][]float64) (*Gradient, error) {
	return NewGradientFrom([][][]float64{grid})
}

func (g *Gradient) index(x, y, z int) int {
	if boundsChecks && (x < 0 || x >= g.X || y < 0 || y >= g.Y || z < 0 || z >= g.Z) {
		panic(fmt.Sprintf("gradient: site (%d,%d,%d) outside %dx%dx%d", x, y, z, g.X, g.Y, g.Z))
	}
	return (z*g.Y+y)*g.X + x
}

// Get returns the current value at a site.
func (g *Gradient) Get(x, y, z int) float64 { return g.cur[g.index(x, y, z)] }

// GetNext returns the pending value at a site.
func (g *Gradient) GetNext(x, y, z int) float64 { return g.next[g.index(x, y, z)] }

// Set overwrites the current value at a site.
func (g *Gradient) Set(x, y, z int, v float64) { g.cur[g.index(x, y, z)] = v }

// SetNext overwrites the pending value at a site.
func (g *Gradient) SetNext(x, y, z int, v float64) { g.next[g.index(x, y, z)] = v }

// Decrement subtracts amount from the current value at a site.
func (g *Gradient) Decrement(x, y, z int, amount float64) { g.cur[g.index(x, y, z)] -= amount }

// DecrementNext subtracts amount from the pending value at a site. This is
// how consumption is recorded without clobbering the diffusion result.
func (g *Gradient) DecrementNext(x, y, z int, amount float64) { g.next[g.index(x, y, z)] -= amount }

// Fill sets every site of the current buffer to v.
func (g *Gradient) Fill(v float64) {
	for i := range g.cur {
		g.cur[i] = v
	}
}

// SetDiffusionCoefficient sets k. Zero disables spatial spread.
func (g *Gradient) SetDiffusionCoefficient(k float64) { g.k = k }

// DiffusionCoefficient returns k.
func (g *Gradient) DiffusionCoefficient() float64 { return g.k }

// StabilityLimit returns the largest k for which the explicit update
// stays non-oscillating: 1 / (2 * Dims).
func (g *Gradient) StabilityLimit() float64 { return 1 / float64(2*g.dims) }

// SetBoundaryMode switches between periodic and reflecting edges.
func (g *Gradient) SetBoundaryMode(periodic bool) {
	if periodic {
		g.boundary = BoundaryPeriodic
	} else {
		g.boundary = BoundaryReflecting
	}
}

// Boundary returns the active boundary mode.
func (g *Gradient) Boundary() Boundary { return g.boundary }

// Dims returns the number of active spatial dimensions.
func (g *Gradient) Dims() int { return g.dims }

// Snapshot returns a copy of the current buffer in (z, y, x) order.
func (g *Gradient) Snapshot() []float64 {
	out := make([]float64, len(g.cur))
	copy(out, g.cur)
	return out
}

// NeighborSum sums the 2*Dims axis-aligned neighbors of a site in the
// current buffer, resolving edges per the boundary mode.
func (g *Gradient) NeighborSum(x, y, z int) float64 {
	i := g.index(x, y, z)
	return g.neighborSum(i, x, y, z, g.cur[i])
}

func (g *Gradient) neighborSum(i, x, y, z int, self float64) float64 {
	sum := g.axisPair(i, x, g.X, 1, self)
	if g.dims >= 2 {
		sum += g.axisPair(i, y, g.Y, g.X, self)
	}
	if g.dims == 3 {
		sum += g.axisPair(i, z, g.Z, g.X*g.Y, self)
	}
	return sum
}

// axisPair returns the two neighbors of flat index i along one axis, where
// pos is the coordinate on that axis, n its extent and stride its step.
func (g *Gradient) axisPair(i, pos, n, stride int, self float64) float64 {
	periodic := g.boundary == BoundaryPeriodic

	lo := self
	switch {
	case pos > 0:
		lo = g.cur[i-stride]
	case periodic:
		lo = g.cur[i+(n-1)*stride]
	}

	hi := self
	switch {
	case pos < n-1:
		hi = g.cur[i+stride]
	case periodic:
		hi = g.cur[i-(n-1)*stride]
	}

	return lo + hi
}

// Diffuse adds one explicit Laplacian step into the next buffer:
//
//	next += cur + k*(NeighborSum - 2*Dims*cur)
//
// Only the current buffer is read, so earlier DecrementNext calls in the
// same step are preserved.
func (g *Gradient) Diffuse() {
	if g.k == 0 {
		for i, c := range g.cur {
			g.next[i] += c
		}
		return
	}

	stencil := float64(2 * g.dims)
	i := 0
	for z := 0; z < g.Z; z++ {
		for y := 0; y < g.Y; y++ {
			for x := 0; x < g.X; x++ {
				c := g.cur[i]
				g.next[i] += c + g.k*(g.neighborSum(i, x, y, z, c)-stencil*c)
				i++
			}
		}
	}
}

// Advance swaps the buffers, zeroes the new next buffer and floors the new
// current buffer at zero.
func (g *Gradient) Advance() {
	g.cur, g.next = g.next, g.cur
	clear(g.next)
	for i, v := range g.cur {
		if v < 0 {
			g.cur[i] = 0
		}
	}
}
