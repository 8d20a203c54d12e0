package filter

import (
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// summedArea is a summed-area table over a plane padded by radius samples of
// replicated border on every side, so each (2r+1)² window is complete.
type summedArea struct {
	w, h   int // padded size + 1
	radius int
	sum    []float64
}

func newSummedArea(p *imgbuf.Plane, radius int) *summedArea {
	pw, ph := p.Width+2*radius, p.Height+2*radius
	s := &summedArea{w: pw + 1, h: ph + 1, radius: radius, sum: make([]float64, (pw+1)*(ph+1))}
	for y := 0; y < ph; y++ {
		var row float64
		for x := 0; x < pw; x++ {
			row += float64(p.At(x-radius, y-radius))
			s.sum[(y+1)*s.w+x+1] = s.sum[y*s.w+x+1] + row
		}
	}
	return s
}

// window returns the sum of the (2r+1)² window centred on (x, y) of the
// original plane.
func (s *summedArea) window(x, y int) float64 {
	x1, y1 := x+2*s.radius+1, y+2*s.radius+1
	return s.sum[y1*s.w+x1] - s.sum[y*s.w+x1] - s.sum[y1*s.w+x] + s.sum[y*s.w+x]
}

// BoxMean returns the mean over the (2r+1)² window around every sample,
// with replicate-edge borders.
func BoxMean(p *imgbuf.Plane, radius int) *imgbuf.Plane {
	sat := newSummedArea(p, radius)
	n := float64((2*radius + 1) * (2*radius + 1))
	out := imgbuf.NewPlane(p.Width, p.Height)
	parallel.Pixels(p.Width, p.Height, func(x, y int) {
		out.Pix[y*p.Width+x] = float32(sat.window(x, y) / n)
	})
	return out
}
