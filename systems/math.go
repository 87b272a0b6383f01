package systems

// MichaelisMenten returns the saturating uptake multiplier c/(c+km).
// Non-positive concentrations consume nothing.
func MichaelisMenten(c, km float64) float64 {
	if c <= 0 {
		return 0
	}
	return c / (c + km)
}

// SiteCoords maps a row-major agent-plane id to lattice coordinates.
func SiteCoords(id, width int) (x, y int) {
	return id % width, id / width
}

// SiteID maps lattice coordinates to a row-major agent-plane id.
func SiteID(x, y, width int) int {
	return y*width + x
}
