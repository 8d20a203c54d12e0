package filter

import (
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// Unsharp sharpens m: out = v + (v − blur(v))·strength, clamped.
func Unsharp(m *imgbuf.Image, sigma, strength float64) *imgbuf.Image {
	src := imgbuf.PlaneFrom(m)
	blurred := Gaussian(src, sigma)
	s := float32(strength)

	out := imgbuf.New(m.Width, m.Height, 1)
	parallel.Rows(m.Height, func(y0, y1 int) {
		for i := y0 * m.Width; i < y1*m.Width; i++ {
			v := src.Pix[i]
			out.Pix[i] = imgbuf.Round8(v + (v-blurred.Pix[i])*s)
		}
	})
	return out
}

// LocalContrast amplifies each sample's deviation from the mean of its
// (2r+1)² neighbourhood: out = mean + (v − mean)·strength.
func LocalContrast(p *imgbuf.Plane, radius int, strength float64) *imgbuf.Plane {
	mean := BoxMean(p, radius)
	s := float32(strength)

	out := imgbuf.NewPlane(p.Width, p.Height)
	parallel.Rows(p.Height, func(y0, y1 int) {
		for i := y0 * p.Width; i < y1*p.Width; i++ {
			m := mean.Pix[i]
			v := m + (p.Pix[i]-m)*s
			out.Pix[i] = min(max(v, 0), 255)
		}
	})
	return out
}
