package bc3

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"
)

// maxIterations bounds the axis-refinement passes of the cluster fit.
const maxIterations = 8

// colourSet is the set of distinct colours in a block with their accumulated
// weights.
type colourSet struct {
	n       int
	points  [16][3]float32 // 0..1
	weights [16]float32
}

func newColourSet(px *[16][4]uint8, weighByAlpha bool) *colourSet {
	s := &colourSet{}
	for _, p := range px {
		w := float32(1)
		if weighByAlpha {
			w = float32(int(p[3])+1) / 256
		}
		pt := [3]float32{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255}

		j := 0
		for ; j < s.n; j++ {
			if s.points[j] == pt {
				break
			}
		}
		if j == s.n {
			s.points[j] = pt
			s.n++
		}
		s.weights[j] += w
	}
	return s
}

// encodeColour writes the 8-byte colour half of a BC3 block for px.
func encodeColour(dst []byte, px *[16][4]uint8, opts Options) {
	set := newColourSet(px, opts.WeighColourByAlpha)

	var c0, c1 uint16
	if set.n == 1 {
		c0, c1 = singleColourEndpoints(px[0])
	} else {
		a, b := clusterFit(set, opts.Weights)
		c0, c1 = quantize565(a), quantize565(b)
	}

	writeColourBlock(dst, px, c0, c1, opts.Weights)
}

// writeColourBlock orders the endpoints for four-colour mode and assigns each
// pixel the palette entry with the lowest weighted error.
func writeColourBlock(dst []byte, px *[16][4]uint8, c0, c1 uint16, metric [3]float32) {
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	var indices uint32
	if c0 != c1 {
		pal := colorPalette(c0, c1)
		for i, p := range px {
			best, bestErr := 0, float32(math.MaxFloat32)
			for k, q := range pal {
				var e float32
				for c := 0; c < 3; c++ {
					d := float32(int(p[c]) - int(q[c]))
					e += metric[c] * d * d
				}
				if e < bestErr {
					best, bestErr = k, e
				}
			}
			indices |= uint32(best) << (2 * i)
		}
	}

	binary.LittleEndian.PutUint16(dst[0:], c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)
	binary.LittleEndian.PutUint32(dst[4:], indices)
}

// clusterFit searches every ordered split of the colours (sorted along the
// principal axis) into four clusters mapped to the palette weights 1, 2/3,
// 1/3, 0, solving least squares for the two endpoints of each split and
// keeping the pair with the lowest weighted error on the 565 grid.
func clusterFit(set *colourSet, metric [3]float32) (bestA, bestB [3]float32) {
	axis := principalAxis(set)
	bestErr := float32(math.MaxFloat32)

	var order, prev [16]int
	for iter := 0; iter < maxIterations; iter++ {
		sortAlong(set, axis, &order)
		if iter > 0 && order == prev {
			break
		}
		prev = order

		a, b, err := bestSplit(set, &order, metric)
		if err >= bestErr {
			break
		}
		bestA, bestB, bestErr = a, b, err

		next := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		if next == ([3]float32{}) {
			break
		}
		axis = next
	}
	return bestA, bestB
}

func bestSplit(set *colourSet, order *[16]int, metric [3]float32) (bestA, bestB [3]float32, bestErr float32) {
	n := set.n

	// Prefix sums of weights and weighted points in axis order.
	var wsum [17]float32
	var xsum [17][3]float32
	for i := 0; i < n; i++ {
		j := order[i]
		w := set.weights[j]
		wsum[i+1] = wsum[i] + w
		for c := 0; c < 3; c++ {
			xsum[i+1][c] = xsum[i][c] + w*set.points[j][c]
		}
	}

	bestErr = float32(math.MaxFloat32)
	for i := 0; i <= n; i++ {
		for j := i; j <= n; j++ {
			for k := j; k <= n; k++ {
				w0, w1, w2, w3 := wsum[i], wsum[j]-wsum[i], wsum[k]-wsum[j], wsum[n]-wsum[k]

				alpha2 := w0 + w1*4/9 + w2/9
				beta2 := w3 + w2*4/9 + w1/9
				alphabeta := (w1 + w2) * 2 / 9
				det := alpha2*beta2 - alphabeta*alphabeta
				if det < 1e-9 {
					continue
				}
				inv := 1 / det

				var a, b [3]float32
				var err float32
				for c := 0; c < 3; c++ {
					x0 := xsum[i][c]
					x1 := xsum[j][c] - xsum[i][c]
					x2 := xsum[k][c] - xsum[j][c]
					x3 := xsum[n][c] - xsum[k][c]
					alphax := x0 + x1*2/3 + x2/3
					betax := x3 + x2*2/3 + x1/3

					a[c] = snap((alphax*beta2-betax*alphabeta)*inv, c)
					b[c] = snap((betax*alpha2-alphax*alphabeta)*inv, c)

					e := a[c]*a[c]*alpha2 + b[c]*b[c]*beta2 +
						2*(a[c]*b[c]*alphabeta-a[c]*alphax-b[c]*betax)
					err += metric[c] * e
				}

				if err < bestErr {
					bestA, bestB, bestErr = a, b, err
				}
			}
		}
	}
	return bestA, bestB, bestErr
}

// snap clamps v to [0,1] and rounds it to the 5-bit (red, blue) or 6-bit
// (green) grid.
func snap(v float32, channel int) float32 {
	v = min(max(v, 0), 1)
	steps := float32(31)
	if channel == 1 {
		steps = 63
	}
	return float32(math.Floor(float64(v*steps)+0.5)) / steps
}

func quantize565(c [3]float32) uint16 {
	r := int(math.Floor(float64(c[0]*31) + 0.5))
	g := int(math.Floor(float64(c[1]*63) + 0.5))
	b := int(math.Floor(float64(c[2]*31) + 0.5))
	return pack565(r, g, b)
}

// principalAxis returns the dominant direction of the weighted colour
// covariance, found by power iteration.
func principalAxis(set *colourSet) [3]float32 {
	var total float32
	var centroid [3]float32
	for i := 0; i < set.n; i++ {
		w := set.weights[i]
		total += w
		for c := 0; c < 3; c++ {
			centroid[c] += w * set.points[i][c]
		}
	}
	if total > 0 {
		for c := range centroid {
			centroid[c] /= total
		}
	}

	var cov [3][3]float32
	for i := 0; i < set.n; i++ {
		w := set.weights[i]
		var d [3]float32
		for c := 0; c < 3; c++ {
			d[c] = set.points[i][c] - centroid[c]
		}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov[r][c] += w * d[r] * d[c]
			}
		}
	}

	v := [3]float32{1, 1, 1}
	for iter := 0; iter < 8; iter++ {
		var next [3]float32
		for r := 0; r < 3; r++ {
			next[r] = cov[r][0]*v[0] + cov[r][1]*v[1] + cov[r][2]*v[2]
		}
		m := max(abs32(next[0]), abs32(next[1]), abs32(next[2]))
		if m < 1e-12 {
			break
		}
		for c := range next {
			next[c] /= m
		}
		v = next
	}
	return v
}

func sortAlong(set *colourSet, axis [3]float32, order *[16]int) {
	var dots [16]float32
	for i := 0; i < set.n; i++ {
		order[i] = i
		p := set.points[i]
		dots[i] = p[0]*axis[0] + p[1]*axis[1] + p[2]*axis[2]
	}
	for i := set.n; i < 16; i++ {
		order[i] = 0
	}
	sort.SliceStable(order[:set.n], func(x, y int) bool {
		return dots[order[x]] < dots[order[y]]
	})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// singleColour maps each 8-bit value to the endpoint pair whose 2/3
// interpolant reproduces it best.
type singleColourTable [256][2]uint8

var (
	singleOnce sync.Once
	single5    singleColourTable
	single6    singleColourTable
)

func buildSingleTable(bits int, expand func(int) int) singleColourTable {
	var t singleColourTable
	levels := 1 << bits
	for v := 0; v < 256; v++ {
		bestErr := math.MaxInt
		for e0 := 0; e0 < levels; e0++ {
			x0 := expand(e0)
			for e1 := 0; e1 < levels; e1++ {
				got := (2*x0 + expand(e1)) / 3
				err := got - v
				if err < 0 {
					err = -err
				}
				if err < bestErr {
					bestErr = err
					t[v] = [2]uint8{uint8(e0), uint8(e1)}
				}
			}
		}
	}
	return t
}

// singleColourEndpoints returns endpoints for a block of one colour. Every
// pixel then decodes through palette entry 2 (or 3 once the endpoints are
// swapped into four-colour order).
func singleColourEndpoints(p [4]uint8) (c0, c1 uint16) {
	singleOnce.Do(func() {
		single5 = buildSingleTable(5, expand5)
		single6 = buildSingleTable(6, expand6)
	})
	r := single5[p[0]]
	g := single6[p[1]]
	b := single5[p[2]]
	return pack565(int(r[0]), int(g[0]), int(b[0])), pack565(int(r[1]), int(g[1]), int(b[1]))
}
