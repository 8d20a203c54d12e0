package imgbuf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Image is a row-major 8-bit pixel grid with 1 (luma), 3 (RGB) or 4 (RGBA)
// interleaved channels. Producers allocate a fresh Image per call and never
// modify it after returning it.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8 // len = Width*Height*Channels
}

// New allocates a zeroed image.
func New(w, h, channels int) *Image {
	switch channels {
	case 1, 3, 4:
	default:
		panic(fmt.Sprintf("imgbuf: unsupported channel count %d", channels))
	}
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("imgbuf: negative dimensions %dx%d", w, h))
	}
	return &Image{
		Width:    w,
		Height:   h,
		Channels: channels,
		Pix:      make([]uint8, w*h*channels),
	}
}

// Offset returns the index of channel 0 of pixel (x, y) in Pix.
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// At returns channel c of pixel (x, y). Coordinates outside the image are
// clamped to the border (replicate-edge).
func (m *Image) At(x, y, c int) uint8 {
	return m.Pix[m.Offset(clampInt(x, 0, m.Width-1), clampInt(y, 0, m.Height-1))+c]
}

// SameSize reports whether m and o have identical dimensions.
func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Channels: m.Channels, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// FromImage converts any decoded image to a 4-channel non-premultiplied RGBA buffer.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	n, ok := src.(*image.NRGBA)
	if !ok {
		n = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(n, n.Bounds(), src, b.Min, draw.Src)
	}

	out := New(b.Dx(), b.Dy(), 4)
	for y := 0; y < out.Height; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+out.Width*4]
		copy(out.Pix[y*out.Width*4:(y+1)*out.Width*4], row)
	}
	return out
}

// ToImage exposes the buffer as a standard library image: *image.Gray for
// one channel, *image.NRGBA otherwise (RGB gets opaque alpha).
func (m *Image) ToImage() image.Image {
	r := image.Rect(0, 0, m.Width, m.Height)
	switch m.Channels {
	case 1:
		g := image.NewGray(r)
		copy(g.Pix, m.Pix)
		return g
	case 3:
		n := image.NewNRGBA(r)
		for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
			n.Pix[j] = m.Pix[i]
			n.Pix[j+1] = m.Pix[i+1]
			n.Pix[j+2] = m.Pix[i+2]
			n.Pix[j+3] = 255
		}
		return n
	default:
		n := image.NewNRGBA(r)
		copy(n.Pix, m.Pix)
		return n
	}
}

// RGB returns the red, green and blue samples of pixel (x, y). Single-channel
// images report the luma sample on all three.
func (m *Image) RGB(x, y int) (r, g, b uint8) {
	i := m.Offset(x, y)
	if m.Channels == 1 {
		v := m.Pix[i]
		return v, v, v
	}
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// ColorAt implements a color.Color view of a pixel, used by tests and previews.
func (m *Image) ColorAt(x, y int) color.NRGBA {
	r, g, b := m.RGB(x, y)
	a := uint8(255)
	if m.Channels == 4 {
		a = m.Pix[m.Offset(x, y)+3]
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
