package filter

import (
	"math"

	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// GaussianKernel returns a normalized 1-D kernel of radius ceil(3σ).
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	radius := int(math.Ceil(3 * sigma))
	k := make([]float32, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = float32(w)
		sum += w
	}
	for i := range k {
		k[i] = float32(float64(k[i]) / sum)
	}
	return k
}

// Gaussian blurs p with a separable Gaussian of standard deviation sigma.
// Borders replicate the edge sample.
func Gaussian(p *imgbuf.Plane, sigma float64) *imgbuf.Plane {
	k := GaussianKernel(sigma)
	r := len(k) / 2
	w, h := p.Width, p.Height

	tmp := imgbuf.NewPlane(w, h)
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := p.Pix[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				var acc float32
				for i, kv := range k {
					acc += kv * row[clamp(x+i-r, 0, w-1)]
				}
				tmp.Pix[y*w+x] = acc
			}
		}
	})

	out := imgbuf.NewPlane(w, h)
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var acc float32
				for i, kv := range k {
					acc += kv * tmp.Pix[clamp(y+i-r, 0, h-1)*w+x]
				}
				out.Pix[y*w+x] = acc
			}
		}
	})
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
