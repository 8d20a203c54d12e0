package roughness

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// varianceFactor returns, per pixel, the population variance of luminance in
// the surrounding 7×7 window, scaled by 10 and clamped to [0,1].
func varianceFactor(lum []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	side := 2*varianceRadius + 1
	parallel.Rows(h, func(y0, y1 int) {
		window := make([]float64, side*side)
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				n := 0
				for dy := -varianceRadius; dy <= varianceRadius; dy++ {
					for dx := -varianceRadius; dx <= varianceRadius; dx++ {
						window[n] = at(lum, w, h, x+dx, y+dy)
						n++
					}
				}
				out[y*w+x] = clamp01(stat.PopVariance(window, nil) * 10)
			}
		}
	})
	return out
}

// Edge-aware smoothing falloff: tight where the texture is busy so edges
// survive, loose in flat regions.
const (
	edgeVariance = 0.1
	sigmaEdge    = 0.05
	sigmaFlat    = 0.15
)

// smoothEdgeAware applies a 3×3 range-weighted kernel exp(−Δ²/σ) to raw, with
// σ chosen per pixel from the local variance factor.
func smoothEdgeAware(raw *imgbuf.Image, variance []float64) *imgbuf.Image {
	w, h := raw.Width, raw.Height
	out := imgbuf.New(w, h, 1)
	parallel.Pixels(w, h, func(x, y int) {
		centre := float64(raw.Pix[y*w+x]) / 255
		sigma := sigmaFlat
		if variance[y*w+x] > edgeVariance {
			sigma = sigmaEdge
		}

		var acc, wsum float64
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				v := float64(raw.At(x+dx, y+dy, 0)) / 255
				d := v - centre
				wt := math.Exp(-d * d / sigma)
				acc += wt * v
				wsum += wt
			}
		}
		out.Pix[y*w+x] = imgbuf.Round8(float32(acc / wsum * 255))
	})
	return out
}
