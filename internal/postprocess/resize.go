// Package postprocess resizes finished maps.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"

	"pbr-texgen/internal/imgbuf"
)

// Resize scales m to w×h with Catmull-Rom filtering. Single-channel images
// are scaled as gray. Colour images are scaled with premultiplied alpha so
// transparent texels do not bleed dark fringes into their neighbours. The
// channel count is preserved; m is returned unchanged when it already has
// the requested size.
func Resize(m *imgbuf.Image, w, h int) *imgbuf.Image {
	if m.Width == w && m.Height == h {
		return m
	}
	if m.Channels == 1 {
		src := m.ToImage().(*image.Gray)
		dst := image.NewGray(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		out := imgbuf.New(w, h, 1)
		copy(out.Pix, dst.Pix)
		return out
	}

	// Premultiply alpha
	src := m.ToImage().(*image.NRGBA)
	premul := image.NewRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		a := float64(src.Pix[i+3]) / 255.0
		premul.Pix[i] = uint8(float64(src.Pix[i])*a + 0.5)
		premul.Pix[i+1] = uint8(float64(src.Pix[i+1])*a + 0.5)
		premul.Pix[i+2] = uint8(float64(src.Pix[i+2])*a + 0.5)
		premul.Pix[i+3] = src.Pix[i+3]
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	out := imgbuf.New(w, h, m.Channels)
	for i, j := 0, 0; i < len(dst.Pix); i, j = i+4, j+m.Channels {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			out.Pix[j] = clamp8(float64(dst.Pix[i]) * inv)
			out.Pix[j+1] = clamp8(float64(dst.Pix[i+1]) * inv)
			out.Pix[j+2] = clamp8(float64(dst.Pix[i+2]) * inv)
		}
		if m.Channels == 4 {
			out.Pix[j+3] = dst.Pix[i+3]
		}
	}
	return out
}

// Fit scales m down so neither side exceeds size, keeping the aspect ratio.
// Smaller images are returned unchanged.
func Fit(m *imgbuf.Image, size int) *imgbuf.Image {
	if size <= 0 || (m.Width <= size && m.Height <= size) {
		return m
	}
	w, h := size, size
	if m.Width > m.Height {
		h = max(1, m.Height*size/m.Width)
	} else {
		w = max(1, m.Width*size/m.Height)
	}
	return Resize(m, w, h)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
