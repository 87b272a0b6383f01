package systems

// Occupancy reports whether an agent-plane site is taken.
type Occupancy interface {
	Occupied(id int) bool
}

// OpenSites appends to buf every unoccupied site in the 3x3 Chebyshev
// block around (x, y), focal site included. The block is clamped at the
// plane edges, never wrapped, whatever boundary mode the field uses.
func OpenSites(buf []int, occ Occupancy, x, y, width, height int) []int {
	buf = buf[:0]
	for nx := max(0, x-1); nx < min(width, x+2); nx++ {
		for ny := max(0, y-1); ny < min(height, y+2); ny++ {
			id := SiteID(nx, ny, width)
			if !occ.Occupied(id) {
				buf = append(buf, id)
			}
		}
	}
	return buf
}
