package filter

import (
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// Guided applies a guided filter (He et al.) to input, steered by guide.
//
// Within the (2r+1)² window around each pixel it fits input ≈ a·guide + b on
// [0,1]-normalized samples, with a = cov(guide,input)/(var(guide)+eps) and
// b = mean(input) − a·mean(guide), and evaluates the fit at the pixel's own
// guide value. Output is on the 0..255 scale, clamped.
func Guided(input, guide *imgbuf.Plane, radius int, eps float64) *imgbuf.Plane {
	w, h := input.Width, input.Height
	n := w * h

	g := imgbuf.NewPlane(w, h)
	in := imgbuf.NewPlane(w, h)
	gg := imgbuf.NewPlane(w, h)
	gi := imgbuf.NewPlane(w, h)
	for i := 0; i < n; i++ {
		gv := guide.Pix[i] / 255
		iv := input.Pix[i] / 255
		g.Pix[i] = gv
		in.Pix[i] = iv
		gg.Pix[i] = gv * gv
		gi.Pix[i] = gv * iv
	}

	sg := newSummedArea(g, radius)
	si := newSummedArea(in, radius)
	sgg := newSummedArea(gg, radius)
	sgi := newSummedArea(gi, radius)
	count := float64((2*radius + 1) * (2*radius + 1))

	out := imgbuf.NewPlane(w, h)
	parallel.Pixels(w, h, func(x, y int) {
		meanG := sg.window(x, y) / count
		meanI := si.window(x, y) / count
		varG := sgg.window(x, y)/count - meanG*meanG
		cov := sgi.window(x, y)/count - meanG*meanI

		a := cov / (varG + eps)
		b := meanI - a*meanG
		v := (a*float64(g.Pix[y*w+x]) + b) * 255
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out.Pix[y*w+x] = float32(v)
	})
	return out
}
