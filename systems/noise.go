package systems

import (
	"github.com/ojrac/opensimplex-go"
)

// Perturb scales every value in the current buffer by 1 + amplitude*n,
// where n is coherent simplex noise in [-1, 1] sampled at site/scale.
// Values are floored at zero. amplitude <= 0 leaves the field unchanged.
func (g *Gradient) Perturb(seed int64, amplitude, scale float64) {
	if amplitude <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	noise := opensimplex.New(seed)

	i := 0
	for z := 0; z < g.Z; z++ {
		for y := 0; y < g.Y; y++ {
			for x := 0; x < g.X; x++ {
				n := noise.Eval3(float64(x)/scale, float64(y)/scale, float64(z)/scale)
				g.cur[i] = max(0, g.cur[i]*(1+amplitude*n))
				i++
			}
		}
	}
}
