package filter

import (
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// EqualizeClipped performs global contrast-limited histogram equalization.
//
// Bins above clipLimit·pixels/256 are clipped and the clipped mass is spread
// evenly over all 256 bins before the cumulative distribution is normalized
// into a lookup table. The table is normalized by the mass actually left in
// the histogram, so heavy clipping never compresses the output range.
func EqualizeClipped(m *imgbuf.Image, clipLimit float64) *imgbuf.Image {
	var hist [256]uint64
	for _, v := range m.Pix {
		hist[v]++
	}

	clip := uint64(clipLimit * float64(len(m.Pix)) / 256)

	var clipped uint64
	for i, c := range hist {
		if c > clip {
			clipped += c - clip
			hist[i] = clip
		}
	}
	spread := clipped / 256
	for i := range hist {
		hist[i] += spread
	}

	var cdf [256]uint64
	cdf[0] = hist[0]
	for i := 1; i < 256; i++ {
		cdf[i] = cdf[i-1] + hist[i]
	}

	var cdfMin uint64
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}

	var lut [256]uint8
	if denom := float64(cdf[255]) - float64(cdfMin); denom > 0 {
		for i, c := range cdf {
			if c > 0 {
				lut[i] = imgbuf.Trunc8(float32(float64(c-cdfMin) / denom * 255))
			}
		}
	} else {
		for i := range lut {
			lut[i] = uint8(i)
		}
	}

	return ApplyLUT(m, &lut)
}

// ApplyLUT remaps every sample of m through lut.
func ApplyLUT(m *imgbuf.Image, lut *[256]uint8) *imgbuf.Image {
	out := imgbuf.New(m.Width, m.Height, m.Channels)
	stride := m.Width * m.Channels
	parallel.Rows(m.Height, func(y0, y1 int) {
		for i := y0 * stride; i < y1*stride; i++ {
			out.Pix[i] = lut[m.Pix[i]]
		}
	})
	return out
}

// Stretch linearly maps the [min,max] range of m onto [0,255]. A constant
// image is returned unchanged.
func Stretch(m *imgbuf.Image) *imgbuf.Image {
	lo, hi := uint8(255), uint8(0)
	for _, v := range m.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi <= lo {
		return m.Clone()
	}

	var lut [256]uint8
	span := float32(hi - lo)
	for v := int(lo); v <= int(hi); v++ {
		lut[v] = imgbuf.Trunc8(float32(v-int(lo)) / span * 255)
	}
	return ApplyLUT(m, &lut)
}
