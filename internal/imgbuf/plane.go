package imgbuf

import "math"

// Rec. 709 luma weights.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Plane is a single-channel float32 working buffer. Samples are kept on the
// 0..255 scale so it converts losslessly to and from 8-bit luma.
type Plane struct {
	Width  int
	Height int
	Pix    []float32
}

// NewPlane allocates a zeroed plane.
func NewPlane(w, h int) *Plane {
	return &Plane{Width: w, Height: h, Pix: make([]float32, w*h)}
}

// At returns the sample at (x, y) with replicate-edge clamping.
func (p *Plane) At(x, y int) float32 {
	return p.Pix[clampInt(y, 0, p.Height-1)*p.Width+clampInt(x, 0, p.Width-1)]
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	out := NewPlane(p.Width, p.Height)
	copy(out.Pix, p.Pix)
	return out
}

// PlaneFrom converts a single-channel image to a plane. Multi-channel images
// are reduced to Rec. 709 luminance first.
func PlaneFrom(m *Image) *Plane {
	if m.Channels != 1 {
		m = Luminance(m)
	}
	p := NewPlane(m.Width, m.Height)
	for i, v := range m.Pix {
		p.Pix[i] = float32(v)
	}
	return p
}

// Gray quantizes the plane to a single-channel image, rounding to nearest and
// clamping to [0,255].
func (p *Plane) Gray() *Image {
	out := New(p.Width, p.Height, 1)
	for i, v := range p.Pix {
		out.Pix[i] = Round8(v)
	}
	return out
}

// Quantize rounds every sample in place to the nearest representable 8-bit value.
func (p *Plane) Quantize() {
	for i, v := range p.Pix {
		p.Pix[i] = float32(Round8(v))
	}
}

// Luma returns the Rec. 709 luminance of an 8-bit colour, normalized to [0,1].
func Luma(r, g, b uint8) float32 {
	return (LumaR*float32(r) + LumaG*float32(g) + LumaB*float32(b)) / 255
}

// Luminance converts an image to single-channel Rec. 709 luminance. A
// single-channel input is returned as a copy.
func Luminance(m *Image) *Image {
	if m.Channels == 1 {
		return m.Clone()
	}
	out := New(m.Width, m.Height, 1)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+m.Channels, j+1 {
		out.Pix[j] = Trunc8(Luma(m.Pix[i], m.Pix[i+1], m.Pix[i+2]) * 255)
	}
	return out
}

// Round8 rounds to nearest and saturates to the 8-bit range.
func Round8(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Floor(float64(v) + 0.5))
}

// Trunc8 truncates toward zero and saturates to the 8-bit range.
func Trunc8(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
