package heightmap

import (
	"math"

	"pbr-texgen/internal/filter"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// mid is the encoded value of a zero Laplacian difference.
const mid = 127.5

// LaplacianPyramid is a Laplacian decomposition: band-pass levels from finest
// (index 0, source resolution) to coarsest, plus the low-pass residual.
//
// Levels are stored encoded as (a − b + 255)/2, so a flat band sits at
// mid-gray. In 8-bit mode every level holds integral values in [0,255]; in
// wide mode the differences are carried unquantized.
type LaplacianPyramid struct {
	Laplacian []*imgbuf.Plane
	Residual  *imgbuf.Plane
	Wide      bool
}

// Len returns the number of stored images, levels + 1.
func (p *LaplacianPyramid) Len() int {
	return len(p.Laplacian) + 1
}

// BuildPyramid decomposes src into levels band-pass images plus a residual.
//
// Each level is encoded against the reconstruction of the next coarser level
// rather than its exact Gaussian image, so quantization error does not
// accumulate: reconstructing an unmodified 8-bit pyramid is within one level
// of src everywhere.
func BuildPyramid(src *imgbuf.Plane, levels int, wide bool) *LaplacianPyramid {
	gauss := make([]*imgbuf.Plane, levels+1)
	gauss[0] = src
	for i := 0; i < levels; i++ {
		gauss[i+1] = downsample(gauss[i], wide)
	}

	p := &LaplacianPyramid{
		Laplacian: make([]*imgbuf.Plane, levels),
		Residual:  gauss[levels].Clone(),
		Wide:      wide,
	}

	recon := p.Residual
	for k := levels - 1; k >= 0; k-- {
		g := gauss[k]
		up := upsample(recon, g.Width, g.Height, wide)
		p.Laplacian[k] = encodeDiff(g, up, wide)
		recon = addDiff(up, p.Laplacian[k], wide)
	}
	return p
}

// Enhance amplifies each band's deviation from mid-gray. Bands are numbered
// from the coarsest: the residual keeps boost 1 and the band at level n
// (n = 1 is the coarsest band, n = levels the finest) gets 1 + n·step.
func (p *LaplacianPyramid) Enhance(step float64) {
	levels := len(p.Laplacian)
	for k, lap := range p.Laplacian {
		boost := float32(1 + float64(levels-k)*step)
		parallel.Rows(lap.Height, func(y0, y1 int) {
			for i := y0 * lap.Width; i < y1*lap.Width; i++ {
				v := mid + (lap.Pix[i]-mid)*boost
				if !p.Wide {
					v = float32(imgbuf.Round8(v))
				}
				lap.Pix[i] = v
			}
		})
	}
}

// Reconstruct collapses the pyramid from the residual outward, returning an
// image at the finest level's resolution. The result is clamped to [0,255].
func (p *LaplacianPyramid) Reconstruct() *imgbuf.Plane {
	cur := p.Residual
	for k := len(p.Laplacian) - 1; k >= 0; k-- {
		lap := p.Laplacian[k]
		cur = addDiff(upsample(cur, lap.Width, lap.Height, p.Wide), lap, p.Wide)
	}
	if cur == p.Residual {
		cur = cur.Clone()
	}
	for i, v := range cur.Pix {
		cur.Pix[i] = min(max(v, 0), 255)
	}
	return cur
}

// downsample blurs with σ=1 and averages 2×2 boxes. An image that cannot be
// halved in both directions is returned at its current size.
func downsample(src *imgbuf.Plane, wide bool) *imgbuf.Plane {
	w, h := src.Width/2, src.Height/2
	if w == 0 || h == 0 {
		return src.Clone()
	}

	blurred := filter.Gaussian(src, 1)
	out := imgbuf.NewPlane(w, h)
	sw := src.Width
	parallel.Pixels(w, h, func(x, y int) {
		i := 2*y*sw + 2*x
		out.Pix[y*w+x] = (blurred.Pix[i] + blurred.Pix[i+1] + blurred.Pix[i+sw] + blurred.Pix[i+sw+1]) / 4
	})
	if !wide {
		out.Quantize()
	}
	return out
}

// upsample expands src to w×h by nearest-neighbour replication and smooths
// the result with a σ=1 Gaussian.
func upsample(src *imgbuf.Plane, w, h int, wide bool) *imgbuf.Plane {
	expanded := imgbuf.NewPlane(w, h)
	parallel.Pixels(w, h, func(x, y int) {
		expanded.Pix[y*w+x] = src.At(x/2, y/2)
	})
	out := filter.Gaussian(expanded, 1)
	if !wide {
		out.Quantize()
	}
	return out
}

// encodeDiff stores a − b remapped to (a − b + 255)/2.
func encodeDiff(a, b *imgbuf.Plane, wide bool) *imgbuf.Plane {
	out := imgbuf.NewPlane(a.Width, a.Height)
	for i := range out.Pix {
		d := a.Pix[i] - b.Pix[i] + 255
		if wide {
			out.Pix[i] = d / 2
			continue
		}
		out.Pix[i] = float32(min(max(math.Floor(float64(d)/2), 0), 255))
	}
	return out
}

// addDiff decodes an encoded band back to a signed difference and adds it to
// base. 8-bit results saturate to [0,255].
func addDiff(base, enc *imgbuf.Plane, wide bool) *imgbuf.Plane {
	out := imgbuf.NewPlane(base.Width, base.Height)
	for i := range out.Pix {
		v := base.Pix[i] + 2*enc.Pix[i] - 255
		if !wide {
			v = min(max(v, 0), 255)
		}
		out.Pix[i] = v
	}
	return out
}
