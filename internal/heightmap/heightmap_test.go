package heightmap_test

import (
	"bytes"
	"math"
	"testing"

	"pbr-texgen/internal/heightmap"
	"pbr-texgen/internal/imgbuf"
)

// albedo builds a deterministic RGBA test texture with gradients and noise.
func albedo(w, h int) *imgbuf.Image {
	m := imgbuf.New(w, h, 4)
	s := uint32(12345)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s = s*1664525 + 1013904223
			i := m.Offset(x, y)
			m.Pix[i] = uint8((x * 255) / max(w-1, 1))
			m.Pix[i+1] = uint8((y * 255) / max(h-1, 1))
			m.Pix[i+2] = uint8(s >> 24)
			m.Pix[i+3] = 255
		}
	}
	return m
}

func TestGenerateDimensions(t *testing.T) {
	sizes := [][2]int{{1, 1}, {2, 3}, {13, 7}, {64, 48}}
	for _, kind := range []heightmap.Kind{heightmap.KindPyramid, heightmap.KindSimple} {
		opts := heightmap.DefaultOptions()
		opts.Strategy = kind
		s, err := heightmap.New(opts)
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		for _, sz := range sizes {
			out := s.Generate(albedo(sz[0], sz[1]))
			if out.Width != sz[0] || out.Height != sz[1] || out.Channels != 1 {
				t.Fatalf("%s %dx%d: got %dx%dx%d", kind, sz[0], sz[1], out.Width, out.Height, out.Channels)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	src := albedo(40, 33)
	a := heightmap.Generate(src)
	b := heightmap.Generate(src)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("repeated runs differ")
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	opts := heightmap.DefaultOptions()
	opts.Strategy = "bogus"
	if _, err := heightmap.New(opts); err == nil {
		t.Fatalf("New(bogus): got nil error")
	}
}

func TestPyramidDimensionChain(t *testing.T) {
	src := imgbuf.PlaneFrom(imgbuf.Luminance(albedo(13, 7)))
	p := heightmap.BuildPyramid(src, 3, false)
	if p.Len() != 4 {
		t.Fatalf("Len = %d, want 4", p.Len())
	}
	want := [][2]int{{13, 7}, {6, 3}, {3, 1}}
	for i, wh := range want {
		l := p.Laplacian[i]
		if l.Width != wh[0] || l.Height != wh[1] {
			t.Fatalf("level %d: %dx%d, want %dx%d", i, l.Width, l.Height, wh[0], wh[1])
		}
	}
	if p.Residual.Width != 3 || p.Residual.Height != 1 {
		t.Fatalf("residual %dx%d, want 3x1", p.Residual.Width, p.Residual.Height)
	}
	out := p.Reconstruct()
	if out.Width != 13 || out.Height != 7 {
		t.Fatalf("reconstruction %dx%d, want 13x7", out.Width, out.Height)
	}
}

func TestPyramidRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		wide   bool
		maxErr float64
	}{
		{"8-bit", false, 2},
		{"wide", true, 0.01},
	}
	src := imgbuf.PlaneFrom(imgbuf.Luminance(albedo(64, 50)))
	for _, c := range cases {
		p := heightmap.BuildPyramid(src, 3, c.wide)
		p.Enhance(0)
		out := p.Reconstruct()
		for i := range src.Pix {
			if d := math.Abs(float64(out.Pix[i] - src.Pix[i])); d > c.maxErr {
				t.Fatalf("%s: sample %d drifted by %v (> %v)", c.name, i, d, c.maxErr)
			}
		}
	}
}

func TestPyramidFlatBandsAreMidGray(t *testing.T) {
	src := imgbuf.NewPlane(32, 32)
	for i := range src.Pix {
		src.Pix[i] = 100
	}

	// 8-bit bands sit within half a level of mid-gray: a zero difference is
	// stored as 127 and the next finer band absorbs the -1 it decodes to.
	p := heightmap.BuildPyramid(src, 3, false)
	for k, lap := range p.Laplacian {
		for i, v := range lap.Pix {
			if v != 127 && v != 128 {
				t.Fatalf("level %d sample %d = %v, want 127 or 128", k, i, v)
			}
		}
	}
	out := p.Reconstruct()
	for i, v := range out.Pix {
		if math.Abs(float64(v-100)) > 1 {
			t.Fatalf("8-bit flat reconstruction sample %d = %v, want 100±1", i, v)
		}
	}

	wide := heightmap.BuildPyramid(src, 3, true)
	for k, lap := range wide.Laplacian {
		for i, v := range lap.Pix {
			if math.Abs(float64(v)-127.5) > 1e-3 {
				t.Fatalf("wide level %d sample %d = %v, want 127.5", k, i, v)
			}
		}
	}
	for i, v := range wide.Reconstruct().Pix {
		if math.Abs(float64(v-100)) > 1e-3 {
			t.Fatalf("wide flat reconstruction sample %d = %v, want 100", i, v)
		}
	}
}

func TestEnhanceBoostsFinerLevelsMore(t *testing.T) {
	src := imgbuf.PlaneFrom(imgbuf.Luminance(albedo(64, 64)))
	p := heightmap.BuildPyramid(src, 3, true)
	before := make([]float64, len(p.Laplacian))
	for k, lap := range p.Laplacian {
		before[k] = deviation(lap)
	}
	p.Enhance(0.15)
	for k, lap := range p.Laplacian {
		got := deviation(lap) / before[k]
		want := 1 + float64(3-k)*0.15
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("level %d boost = %v, want %v", k, got, want)
		}
	}
}

func deviation(p *imgbuf.Plane) float64 {
	var sum float64
	for _, v := range p.Pix {
		sum += math.Abs(float64(v) - 127.5)
	}
	return sum
}

func TestSimpleUsesFullRange(t *testing.T) {
	out := heightmap.Simple{Options: heightmap.DefaultOptions().Simple}.Generate(albedo(48, 48))
	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo != 0 || hi != 255 {
		t.Fatalf("range %d..%d, want 0..255", lo, hi)
	}
}
