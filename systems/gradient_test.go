package systems

import (
	"errors"
	"math"
	"testing"
)

const (
	testX = 100
	testY = 50
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestGradient(t *testing.T, x, y, z int) *Gradient {
	t.Helper()
	g, err := NewGradient(x, y, z)
	if err != nil {
		t.Fatalf("NewGradient(%d, %d, %d): %v", x, y, z, err)
	}
	return g
}

func TestGradientConstruction(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)

	if g.Dims() != 2 {
		t.Errorf("Dims() = %d, want 2", g.Dims())
	}
	if n := len(g.Snapshot()); n != testX*testY {
		t.Errorf("len(Snapshot()) = %d, want %d", n, testX*testY)
	}
	for y := 0; y < testY; y++ {
		for x := 0; x < testX; x++ {
			if v := g.Get(x, y, 0); v != 0 {
				t.Fatalf("Get(%d,%d) = %v, want 0", x, y, v)
			}
		}
	}
}

func TestGradientDims(t *testing.T) {
	tests := []struct {
		x, y, z int
		want    int
	}{
		{10, 1, 1, 1},
		{10, 10, 1, 2},
		{10, 10, 3, 3},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		g := newTestGradient(t, tt.x, tt.y, tt.z)
		if g.Dims() != tt.want {
			t.Errorf("%dx%dx%d: Dims() = %d, want %d", tt.x, tt.y, tt.z, g.Dims(), tt.want)
		}
	}
}

func TestGradientStabilityLimit(t *testing.T) {
	tests := []struct {
		x, y, z int
		want    float64
	}{
		{10, 1, 1, 0.5},
		{10, 10, 1, 0.25},
		{10, 10, 3, 1.0 / 6},
	}
	for _, tt := range tests {
		g := newTestGradient(t, tt.x, tt.y, tt.z)
		if got := g.StabilityLimit(); !approx(got, tt.want) {
			t.Errorf("%dx%dx%d: StabilityLimit() = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}

func TestGradientInvalidDimension(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z int
	}{
		{"zero x", 0, 5, 1},
		{"zero y", 5, 0, 1},
		{"zero z", 5, 5, 0},
		{"negative", -1, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGradient(tt.x, tt.y, tt.z)
			if !errors.Is(err, ErrInvalidDimension) {
				t.Errorf("err = %v, want ErrInvalidDimension", err)
			}
		})
	}
}

func TestGradientFromGrid(t *testing.T) {
	const gridY, gridX = 5, 3
	grid := make([][]float64, gridY)
	for y := range grid {
		grid[y] = make([]float64, gridX)
		for x := range grid[y] {
			grid[y][x] = float64(x*x + y)
		}
	}

	g, err := NewGradientFrom2D(grid)
	if err != nil {
		t.Fatalf("NewGradientFrom2D: %v", err)
	}
	if g.X != gridX || g.Y != gridY || g.Z != 1 {
		t.Fatalf("extents = %dx%dx%d, want %dx%dx1", g.X, g.Y, g.Z, gridX, gridY)
	}
	for y := 0; y < gridY; y++ {
		for x := 0; x < gridX; x++ {
			if got := g.Get(x, y, 0); got != float64(x*x+y) {
				t.Errorf("Get(%d,%d) = %v, want %v", x, y, got, x*x+y)
			}
			if got := g.GetNext(x, y, 0); got != 0 {
				t.Errorf("GetNext(%d,%d) = %v, want 0", x, y, got)
			}
		}
	}
}

func TestGradientFrom3DGrid(t *testing.T) {
	grid := [][][]float64{
		{{1, 2}, {3, 4}, {5, 6}},
		{{7, 8}, {9, 10}, {11, 12}},
	}
	g, err := NewGradientFrom(grid)
	if err != nil {
		t.Fatalf("NewGradientFrom: %v", err)
	}
	if g.Dims() != 3 {
		t.Errorf("Dims() = %d, want 3", g.Dims())
	}
	for z := range grid {
		for y := range grid[z] {
			for x := range grid[z][y] {
				if got := g.Get(x, y, z); got != grid[z][y][x] {
					t.Errorf("Get(%d,%d,%d) = %v, want %v", x, y, z, got, grid[z][y][x])
				}
			}
		}
	}
}

func TestGradientFromRaggedGrid(t *testing.T) {
	tests := []struct {
		name string
		grid [][][]float64
		want error
	}{
		{"ragged row", [][][]float64{{{1, 2}, {3}}}, ErrDimensionMismatch},
		{"ragged plane", [][][]float64{{{1, 2}, {3, 4}}, {{5, 6}}}, ErrDimensionMismatch},
		{"empty", [][][]float64{}, ErrInvalidDimension},
		{"empty row", [][][]float64{{{}}}, ErrInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGradientFrom(tt.grid)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNeighborSumReflecting(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)
	g.SetDiffusionCoefficient(0.01)

	g.Diffuse()
	for y := 0; y < testY; y++ {
		for x := 0; x < testX; x++ {
			if g.GetNext(x, y, 0) != 0 || g.NeighborSum(x, y, 0) != 0 {
				t.Fatalf("empty field produced oxygen at (%d,%d)", x, y)
			}
		}
	}
	g.Advance()

	g.Set(0, 0, 0, 1)
	if g.Get(0, 0, 0) != 1 {
		t.Fatalf("Get(0,0) = %v, want 1", g.Get(0, 0, 0))
	}

	// Off-grid neighbors of the corner take the corner's own value.
	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 2},
		{1, 0, 1},
		{0, 1, 1},
		{1, 1, 0},
		{99, 49, 0},
		{99, 0, 0},
		{0, 49, 0},
	}
	for _, tt := range tests {
		if got := g.NeighborSum(tt.x, tt.y, 0); got != tt.want {
			t.Errorf("NeighborSum(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNeighborSumPeriodic(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)
	g.SetBoundaryMode(true)
	g.Set(0, 0, 0, 1)

	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 1},
		{1, 1, 0},
		{99, 49, 0},
		{99, 0, 1},
		{0, 49, 1},
	}
	for _, tt := range tests {
		if got := g.NeighborSum(tt.x, tt.y, 0); got != tt.want {
			t.Errorf("NeighborSum(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNeighborSum3D(t *testing.T) {
	g := newTestGradient(t, 4, 4, 3)
	g.Set(0, 0, 0, 1)

	// Three missing neighbors at a 3D corner.
	if got := g.NeighborSum(0, 0, 0); got != 3 {
		t.Errorf("reflecting corner NeighborSum = %v, want 3", got)
	}
	if got := g.NeighborSum(0, 0, 1); got != 1 {
		t.Errorf("NeighborSum above seed = %v, want 1", got)
	}

	g.SetBoundaryMode(true)
	if got := g.NeighborSum(0, 0, 0); got != 0 {
		t.Errorf("periodic corner NeighborSum = %v, want 0", got)
	}
	if got := g.NeighborSum(0, 0, 2); got != 1 {
		t.Errorf("periodic wrap in z NeighborSum = %v, want 1", got)
	}
}

func TestDiffuseReflecting(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)
	g.SetDiffusionCoefficient(0.01)
	g.Set(0, 0, 0, 1)
	g.Diffuse()

	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0.98},
		{0, 1, 0.01},
		{1, 0, 0.01},
		{1, 1, 0},
		{99, 49, 0},
		{99, 0, 0},
		{0, 49, 0},
	}
	for _, tt := range tests {
		if got := g.GetNext(tt.x, tt.y, 0); !approx(got, tt.want) {
			t.Errorf("GetNext(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if got := g.GetNext(1, 1, 0); got != 0 {
		t.Errorf("GetNext(1,1) = %v, want exactly 0", got)
	}
}

func TestDiffusePeriodic(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)
	g.SetDiffusionCoefficient(0.01)
	g.SetBoundaryMode(true)
	g.Set(0, 0, 0, 1)
	g.Diffuse()

	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0.96},
		{0, 1, 0.01},
		{1, 0, 0.01},
		{1, 1, 0},
		{99, 49, 0},
		{99, 0, 0.01},
		{0, 49, 0.01},
	}
	for _, tt := range tests {
		if got := g.GetNext(tt.x, tt.y, 0); !approx(got, tt.want) {
			t.Errorf("GetNext(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDiffuseConservesMassPeriodic(t *testing.T) {
	g := newTestGradient(t, 8, 6, 3)
	g.SetDiffusionCoefficient(0.1)
	g.SetBoundaryMode(true)
	g.Set(3, 2, 1, 5)
	g.Set(0, 0, 0, 2)

	for i := 0; i < 20; i++ {
		g.Diffuse()
		g.Advance()
	}

	var total float64
	for _, v := range g.Snapshot() {
		total += v
	}
	if !approx(total, 7) {
		t.Errorf("total after diffusion = %v, want 7", total)
	}
}

func TestDiffusionIdentity(t *testing.T) {
	extents := [][3]int{{7, 1, 1}, {100, 50, 1}, {6, 5, 4}}
	for _, e := range extents {
		for _, periodic := range []bool{false, true} {
			g := newTestGradient(t, e[0], e[1], e[2])
			g.SetBoundaryMode(periodic)
			g.SetDiffusionCoefficient(0)

			i := 0
			for z := 0; z < g.Z; z++ {
				for y := 0; y < g.Y; y++ {
					for x := 0; x < g.X; x++ {
						g.Set(x, y, z, float64(i%13)*0.37)
						i++
					}
				}
			}
			before := g.Snapshot()

			g.Diffuse()
			g.Advance()

			after := g.Snapshot()
			for j := range before {
				if before[j] != after[j] {
					t.Fatalf("%v periodic=%v: site %d changed %v -> %v", e, periodic, j, before[j], after[j])
				}
			}
		}
	}
}

func TestDiffuseKeepsPendingConsumption(t *testing.T) {
	g := newTestGradient(t, 5, 5, 1)
	g.SetDiffusionCoefficient(0.1)
	g.Fill(1)
	g.DecrementNext(2, 2, 0, 0.25)
	g.Diffuse()

	// Uniform field: diffusion is a pass-through, consumption survives.
	if got := g.GetNext(2, 2, 0); !approx(got, 0.75) {
		t.Errorf("GetNext(2,2) = %v, want 0.75", got)
	}
	if got := g.GetNext(0, 0, 0); !approx(got, 1) {
		t.Errorf("GetNext(0,0) = %v, want 1", got)
	}
}

func TestGradientUpdate(t *testing.T) {
	g := newTestGradient(t, testX, testY, 1)

	g.Set(10, 10, 0, 5)
	g.Set(1, 1, 0, 5)
	if g.Get(10, 10, 0) != 5 || g.Get(1, 1, 0) != 5 {
		t.Fatal("Set did not store values")
	}

	g.Decrement(10, 10, 0, 1)
	g.SetNext(8, 6, 0, 3)
	g.SetNext(10, 10, 0, 20)
	g.DecrementNext(10, 10, 0, 2)

	if got := g.Get(10, 10, 0); got != 4 {
		t.Errorf("Get(10,10) = %v, want 4", got)
	}
	if got := g.GetNext(8, 6, 0); got != 3 {
		t.Errorf("GetNext(8,6) = %v, want 3", got)
	}
	if got := g.GetNext(10, 10, 0); got != 18 {
		t.Errorf("GetNext(10,10) = %v, want 18", got)
	}

	g.Advance()
	if got := g.Get(8, 6, 0); got != 3 {
		t.Errorf("after Advance Get(8,6) = %v, want 3", got)
	}
	if got := g.Get(10, 10, 0); got != 18 {
		t.Errorf("after Advance Get(10,10) = %v, want 18", got)
	}
	if got := g.Get(1, 1, 0); got != 0 {
		t.Errorf("after Advance Get(1,1) = %v, want 0", got)
	}
	if got := g.GetNext(10, 10, 0); got != 0 {
		t.Errorf("after Advance GetNext(10,10) = %v, want 0", got)
	}
}

func TestAdvanceClampsNegative(t *testing.T) {
	g := newTestGradient(t, 4, 3, 2)
	g.SetNext(2, 1, 1, -4)
	g.SetNext(1, 1, 0, 0.5)
	g.Advance()

	if got := g.Get(2, 1, 1); got != 0 {
		t.Errorf("Get(2,1,1) = %v, want 0", got)
	}
	if got := g.Get(1, 1, 0); got != 0.5 {
		t.Errorf("Get(1,1,0) = %v, want 0.5", got)
	}
}

func TestSetBoundaryModeKeepsValues(t *testing.T) {
	g := newTestGradient(t, 3, 3, 1)
	g.Set(1, 1, 0, 2)
	g.SetNext(0, 0, 0, 4)
	g.SetBoundaryMode(true)
	g.SetDiffusionCoefficient(0.2)

	if g.Boundary() != BoundaryPeriodic {
		t.Errorf("Boundary() = %v, want periodic", g.Boundary())
	}
	if g.Get(1, 1, 0) != 2 || g.GetNext(0, 0, 0) != 4 {
		t.Error("changing parameters altered buffer contents")
	}
}

func BenchmarkDiffuse3D(b *testing.B) {
	g, err := NewGradient(300, 500, 72)
	if err != nil {
		b.Fatal(err)
	}
	g.SetDiffusionCoefficient(0.1)
	g.Fill(0.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Diffuse()
		g.Advance()
	}
}
