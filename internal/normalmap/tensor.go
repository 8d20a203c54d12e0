package normalmap

import (
	"math"

	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/mathutil"
	"pbr-texgen/internal/parallel"
)

// Tensor is the Gaussian-weighted structure tensor of one pixel:
//
//	| Jxx Jxy |
//	| Jxy Jyy |
type Tensor struct {
	Jxx, Jxy, Jyy float64
}

// Eigen returns the eigenvalues (l1 ≥ l2) and the dominant gradient direction.
func (t Tensor) Eigen() (l1, l2 float64, dir [2]float64) {
	l1, l2, dir, _ = mathutil.Eigen2x2Sym(t.Jxx, t.Jxy, t.Jyy)
	return l1, l2, dir
}

// Coherence is ((l1−l2)/(l1+l2))², 0 for isotropic or flat neighbourhoods and
// approaching 1 along a single dominant edge orientation.
func (t Tensor) Coherence() float64 {
	l1, l2, _ := t.Eigen()
	if l1+l2 < 1e-12 {
		return 0
	}
	c := (l1 - l2) / (l1 + l2)
	return c * c
}

// Orientation is the angle in radians of the dominant gradient direction.
func (t Tensor) Orientation() float64 {
	_, _, dir := t.Eigen()
	return math.Atan2(dir[1], dir[0])
}

// TensorField is a per-pixel structure tensor image.
type TensorField struct {
	Width, Height int
	T             []Tensor
}

// At returns the tensor at (x, y).
func (f *TensorField) At(x, y int) Tensor {
	return f.T[y*f.Width+x]
}

// StructureTensor accumulates gx², gx·gy and gy² of the Scharr gradients over
// a Gaussian window of radius ceil(2σ) around every pixel, normalized by the
// weight sum. Normal generation does not depend on it; it is an analysis aid
// for anisotropic filtering.
func StructureTensor(height *imgbuf.Image, sigma float64) *TensorField {
	gray := imgbuf.Luminance(height)
	w, h := gray.Width, gray.Height

	gx := make([]float64, w*h)
	gy := make([]float64, w*h)
	parallel.Pixels(w, h, func(x, y int) {
		gx[y*w+x], gy[y*w+x] = Scharr(gray, x, y)
	})

	r := int(math.Ceil(2 * sigma))
	weights := make([]float64, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			weights[(dy+r)*(2*r+1)+dx+r] = math.Exp(-float64(dx*dx+dy*dy) / (2 * sigma * sigma))
		}
	}

	f := &TensorField{Width: w, Height: h, T: make([]Tensor, w*h)}
	parallel.Pixels(w, h, func(x, y int) {
		var t Tensor
		var wsum float64
		for dy := -r; dy <= r; dy++ {
			ny := min(max(y+dy, 0), h-1)
			for dx := -r; dx <= r; dx++ {
				nx := min(max(x+dx, 0), w-1)
				wt := weights[(dy+r)*(2*r+1)+dx+r]
				a, b := gx[ny*w+nx], gy[ny*w+nx]
				t.Jxx += wt * a * a
				t.Jxy += wt * a * b
				t.Jyy += wt * b * b
				wsum += wt
			}
		}
		if wsum > 0 {
			t.Jxx /= wsum
			t.Jxy /= wsum
			t.Jyy /= wsum
		}
		f.T[y*w+x] = t
	})
	return f
}

// CoherenceImage renders Coherence as an 8-bit gray map: black where the
// neighbourhood is flat or isotropic, white along a single edge orientation.
func (f *TensorField) CoherenceImage() *imgbuf.Image {
	out := imgbuf.New(f.Width, f.Height, 1)
	parallel.Pixels(f.Width, f.Height, func(x, y int) {
		out.Pix[y*f.Width+x] = imgbuf.Round8(float32(f.At(x, y).Coherence() * 255))
	})
	return out
}
