package normalmap_test

import (
	"bytes"
	"math"
	"testing"

	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/normalmap"
)

func bumpy(w, h int) *imgbuf.Image {
	m := imgbuf.New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 127 + 100*math.Sin(float64(x)/3)*math.Cos(float64(y)/5)
			m.Pix[y*w+x] = uint8(v)
		}
	}
	return m
}

func TestGenerateDimensionsAndChannels(t *testing.T) {
	for _, sz := range [][2]int{{1, 1}, {5, 3}, {64, 64}} {
		out := normalmap.Generate(bumpy(sz[0], sz[1]))
		if out.Width != sz[0] || out.Height != sz[1] || out.Channels != 3 {
			t.Fatalf("%v: got %dx%dx%d", sz, out.Width, out.Height, out.Channels)
		}
	}
}

func TestGenerateFlatPointsUp(t *testing.T) {
	m := imgbuf.New(8, 8, 1)
	for i := range m.Pix {
		m.Pix[i] = 200
	}
	out := normalmap.Generate(m)
	for i := 0; i < len(out.Pix); i += 3 {
		if out.Pix[i] != 127 || out.Pix[i+1] != 127 || out.Pix[i+2] != 255 {
			t.Fatalf("pixel %d = %v, want [127 127 255]", i/3, out.Pix[i:i+3])
		}
	}
}

func TestGenerateUnitLength(t *testing.T) {
	out := normalmap.Generate(bumpy(48, 40))
	for i := 0; i < len(out.Pix); i += 3 {
		v := normalmap.Decode(out.Pix[i], out.Pix[i+1], out.Pix[i+2])
		if l := v.Len(); math.Abs(l-1) > 0.02 {
			t.Fatalf("pixel %d: decoded length %v, want 1", i/3, l)
		}
	}
}

func TestGenerateSlopeDirection(t *testing.T) {
	// Height rising to the right tilts the normal towards −x.
	m := imgbuf.New(16, 4, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 16; x++ {
			m.Pix[y*16+x] = uint8(x * 16)
		}
	}
	out := normalmap.Generate(m)
	i := out.Offset(8, 2)
	if out.Pix[i] >= 127 {
		t.Fatalf("red = %d, want < 127", out.Pix[i])
	}
	if out.Pix[i+1] != 127 {
		t.Fatalf("green = %d, want 127", out.Pix[i+1])
	}
}

func TestGenerateFlipY(t *testing.T) {
	// Height rising downwards tilts the normal towards −y; FlipY mirrors green.
	m := imgbuf.New(4, 16, 1)
	for y := 0; y < 16; y++ {
		for x := 0; x < 4; x++ {
			m.Pix[y*4+x] = uint8(y * 16)
		}
	}
	gl := normalmap.Generate(m)
	dx := normalmap.GenerateWith(m, normalmap.Options{Strength: 4, FlipY: true})
	i := gl.Offset(2, 8)
	if gl.Pix[i+1] >= 127 {
		t.Fatalf("green = %d, want < 127", gl.Pix[i+1])
	}
	if dx.Pix[i+1] <= 128 {
		t.Fatalf("flipped green = %d, want > 128", dx.Pix[i+1])
	}
	if gl.Pix[i] != dx.Pix[i] || gl.Pix[i+2] != dx.Pix[i+2] {
		t.Fatalf("FlipY changed red or blue")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	src := bumpy(33, 21)
	if !bytes.Equal(normalmap.Generate(src).Pix, normalmap.Generate(src).Pix) {
		t.Fatalf("repeated runs differ")
	}
}

func TestScharrReplicatesBorder(t *testing.T) {
	m := imgbuf.New(3, 3, 1)
	for i := range m.Pix {
		m.Pix[i] = 50
	}
	for _, p := range [][2]int{{0, 0}, {1, 1}, {2, 0}, {0, 2}} {
		gx, gy := normalmap.Scharr(m, p[0], p[1])
		if gx != 0 || gy != 0 {
			t.Fatalf("gradient at %v = (%v,%v), want exactly 0", p, gx, gy)
		}
	}

	// Horizontal ramp of 10 per column: the replicated left border halves
	// the step seen at x=0.
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			m.Pix[y*3+x] = uint8(10 * x)
		}
	}
	gx, gy := normalmap.Scharr(m, 0, 0)
	if math.Abs(gx-10.0/255) > 1e-12 || gy != 0 {
		t.Fatalf("border ramp gradient = (%v,%v), want (%v,0)", gx, gy, 10.0/255)
	}
	gx, _ = normalmap.Scharr(m, 1, 1)
	if math.Abs(gx-20.0/255) > 1e-12 {
		t.Fatalf("interior ramp gradient = %v, want %v", gx, 20.0/255)
	}
}

func TestStructureTensorCoherence(t *testing.T) {
	// Vertical stripes: gradients all along x, so coherence is near 1.
	m := imgbuf.New(24, 24, 1)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			m.Pix[y*24+x] = uint8(127 + 100*math.Sin(float64(x)/2))
		}
	}
	f := normalmap.StructureTensor(m, 1.5)
	if f.Width != 24 || f.Height != 24 {
		t.Fatalf("field %dx%d", f.Width, f.Height)
	}
	tt := f.At(12, 12)
	if c := tt.Coherence(); c < 0.99 {
		t.Fatalf("coherence = %v, want ~1", c)
	}
	if o := math.Abs(tt.Orientation()); o > 1e-6 && math.Abs(o-math.Pi) > 1e-6 {
		t.Fatalf("orientation = %v, want along x", o)
	}

	flat := normalmap.StructureTensor(imgbuf.New(6, 6, 1), 1.5)
	if c := flat.At(3, 3).Coherence(); c != 0 {
		t.Fatalf("flat coherence = %v, want 0", c)
	}
}

func TestCoherenceImage(t *testing.T) {
	m := imgbuf.New(20, 16, 1)
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			m.Pix[y*20+x] = uint8(127 + 100*math.Sin(float64(x)/2))
		}
	}
	img := normalmap.StructureTensor(m, 1.5).CoherenceImage()
	if img.Width != 20 || img.Height != 16 || img.Channels != 1 {
		t.Fatalf("coherence image %dx%dx%d", img.Width, img.Height, img.Channels)
	}
	if v := img.Pix[8*20+10]; v < 250 {
		t.Fatalf("stripe coherence = %d, want ~255", v)
	}

	flat := normalmap.StructureTensor(imgbuf.New(5, 5, 1), 1).CoherenceImage()
	for i, v := range flat.Pix {
		if v != 0 {
			t.Fatalf("flat sample %d = %d, want 0", i, v)
		}
	}
}
