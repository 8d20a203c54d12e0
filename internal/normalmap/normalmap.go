// Package normalmap derives tangent-space normal maps from height maps.
package normalmap

import (
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/mathutil"
	"pbr-texgen/internal/parallel"
)

// Options tunes normal generation.
type Options struct {
	// Strength scales the height gradients; larger values give bumpier normals.
	Strength float64 `mapstructure:"strength"`
	// FlipY negates the green channel (DirectX convention).
	FlipY bool `mapstructure:"flip_y"`
}

// DefaultOptions returns the reference strength with the OpenGL convention.
func DefaultOptions() Options {
	return Options{Strength: 4.0}
}

// Generate builds a normal map with reference options.
func Generate(height *imgbuf.Image) *imgbuf.Image {
	return GenerateWith(height, DefaultOptions())
}

// GenerateWith builds a 3-channel normal map from a height map. Multi-channel
// input is reduced to luminance first. Each pixel's normal is the normalized
// (−dx, −dy, 1) of the Scharr gradients, encoded as (c·0.5 + 0.5)·255.
func GenerateWith(height *imgbuf.Image, opts Options) *imgbuf.Image {
	gray := imgbuf.Luminance(height)
	w, h := gray.Width, gray.Height
	out := imgbuf.New(w, h, 3)

	parallel.Pixels(w, h, func(x, y int) {
		gx, gy := Scharr(gray, x, y)
		dx := gx * opts.Strength
		dy := gy * opts.Strength

		n := mathutil.Vec3{-dx, -dy, 1}.Normalize()
		if opts.FlipY {
			n[1] = -n[1]
		}

		i := out.Offset(x, y)
		out.Pix[i] = encode(n[0])
		out.Pix[i+1] = encode(n[1])
		out.Pix[i+2] = encode(n[2])
	})
	return out
}

// Decode maps an encoded normal-map pixel back to a vector in [−1,1]³.
func Decode(r, g, b uint8) mathutil.Vec3 {
	return mathutil.Vec3{float64(r)/127.5 - 1, float64(g)/127.5 - 1, float64(b)/127.5 - 1}
}

func encode(c float64) uint8 {
	return imgbuf.Trunc8(float32((c*0.5 + 0.5) * 255))
}

// Scharr returns the horizontal and vertical Scharr derivatives at (x, y) of
// a single-channel image, on [0,1]-normalized samples and divided by 16.
// Neighbours outside the image replicate the border. The kernel sums on the
// integer samples, so flat regions give exactly zero.
func Scharr(m *imgbuf.Image, x, y int) (gx, gy float64) {
	at := func(dx, dy int) int {
		return int(m.At(x+dx, y+dy, 0))
	}

	ix := -3*at(-1, -1) + 3*at(1, -1) -
		10*at(-1, 0) + 10*at(1, 0) -
		3*at(-1, 1) + 3*at(1, 1)

	iy := -3*at(-1, -1) - 10*at(0, -1) - 3*at(1, -1) +
		3*at(-1, 1) + 10*at(0, 1) + 3*at(1, 1)

	const scale = 1.0 / (255 * 16)
	return float64(ix) * scale, float64(iy) * scale
}
