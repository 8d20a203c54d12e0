// Package bc3 encodes and decodes BC3 (DXT5) block-compressed RGBA.
//
// Each 4×4 pixel block becomes 16 bytes: an 8-byte alpha block (two 8-bit
// endpoints and sixteen 3-bit indices) followed by an 8-byte colour block
// (two RGB565 endpoints and sixteen 2-bit indices). Blocks are stored in
// row-major block order. Pixel i of a block is (i%4, i/4).
package bc3

import (
	"encoding/binary"
	"fmt"
	"math"

	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// BlockSize is the encoded size of one 4×4 block in bytes.
const BlockSize = 16

// PerceptualWeights weigh colour error by the Rec. 709 luma coefficients.
var PerceptualWeights = [3]float32{imgbuf.LumaR, imgbuf.LumaG, imgbuf.LumaB}

// Options tunes the colour fit.
type Options struct {
	// Weights scales per-channel squared error when choosing endpoints and
	// indices.
	Weights [3]float32
	// WeighColourByAlpha makes nearly transparent pixels count less in the
	// colour fit.
	WeighColourByAlpha bool
}

// DefaultOptions returns perceptual weighting with alpha-weighted colour.
func DefaultOptions() Options {
	return Options{Weights: PerceptualWeights, WeighColourByAlpha: true}
}

// BlockCount returns the number of blocks of a w×h image.
func BlockCount(w, h int) int {
	return (w / 4) * (h / 4)
}

// Encode compresses m into BlockCount(w, h)·16 bytes. Both dimensions must be
// positive multiples of 4. Images without alpha encode as opaque.
func Encode(m *imgbuf.Image, opts Options) ([]byte, error) {
	if m.Width <= 0 || m.Height <= 0 || m.Width%4 != 0 || m.Height%4 != 0 {
		return nil, fmt.Errorf("bc3: dimensions %dx%d are not positive multiples of 4", m.Width, m.Height)
	}
	if opts.Weights == ([3]float32{}) {
		opts.Weights = [3]float32{1, 1, 1}
	}

	bw, bh := m.Width/4, m.Height/4
	out := make([]byte, bw*bh*BlockSize)

	parallel.Rows(bh, func(y0, y1 int) {
		var px [16][4]uint8
		for by := y0; by < y1; by++ {
			for bx := 0; bx < bw; bx++ {
				fetchBlock(m, bx*4, by*4, &px)
				off := (by*bw + bx) * BlockSize
				EncodeBlock(out[off:off+BlockSize], &px, opts)
			}
		}
	})
	return out, nil
}

func fetchBlock(m *imgbuf.Image, x0, y0 int, px *[16][4]uint8) {
	for i := range px {
		x, y := x0+i%4, y0+i/4
		o := m.Offset(x, y)
		switch m.Channels {
		case 1:
			v := m.Pix[o]
			px[i] = [4]uint8{v, v, v, 255}
		case 3:
			px[i] = [4]uint8{m.Pix[o], m.Pix[o+1], m.Pix[o+2], 255}
		default:
			px[i] = [4]uint8{m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3]}
		}
	}
}

// EncodeBlock writes the 16-byte encoding of px into dst.
func EncodeBlock(dst []byte, px *[16][4]uint8, opts Options) {
	_ = dst[BlockSize-1]
	encodeAlpha(dst[0:8], px)
	encodeColour(dst[8:16], px, opts)
}

// encodeAlpha tries the 8-value interpolated mode spanning the full alpha
// range and the 6-value mode with explicit 0 and 255 spanning the remaining
// values, keeping whichever has the lower squared error.
func encodeAlpha(dst []byte, px *[16][4]uint8) {
	lo, hi := uint8(255), uint8(0)
	inLo, inHi := uint8(255), uint8(0)
	for _, p := range px {
		a := p[3]
		lo, hi = min(lo, a), max(hi, a)
		if a != 0 && a != 255 {
			inLo, inHi = min(inLo, a), max(inHi, a)
		}
	}
	if inLo > inHi {
		inLo, inHi = 0, 0
	}

	idx8, err8 := alphaIndices(px, hi, lo)
	idx6, err6 := alphaIndices(px, inLo, inHi)

	a0, a1, idx := hi, lo, idx8
	if err6 < err8 {
		a0, a1, idx = inLo, inHi, idx6
	}

	dst[0], dst[1] = a0, a1
	var bits [8]byte
	binary.LittleEndian.PutUint64(bits[:], idx)
	copy(dst[2:8], bits[:6])
}

func alphaIndices(px *[16][4]uint8, a0, a1 uint8) (indices uint64, sse int) {
	pal := alphaPalette(a0, a1)
	for i, p := range px {
		best, bestErr := 0, math.MaxInt
		for k, q := range pal {
			d := int(p[3]) - int(q)
			if d*d < bestErr {
				best, bestErr = k, d*d
			}
		}
		sse += bestErr
		indices |= uint64(best) << (3 * i)
	}
	return indices, sse
}
