package imgbuf_test

import (
	"image"
	"image/color"
	"testing"

	"pbr-texgen/internal/imgbuf"
)

func TestFromImageSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 7, 255})
		}
	}
	sub := src.SubImage(image.Rect(2, 3, 6, 7))

	m := imgbuf.FromImage(sub)
	if m.Width != 4 || m.Height != 4 || m.Channels != 4 {
		t.Fatalf("got %dx%dx%d, want 4x4x4", m.Width, m.Height, m.Channels)
	}
	r, g, b := m.RGB(0, 0)
	if r != 20 || g != 30 || b != 7 {
		t.Fatalf("pixel (0,0) = %d,%d,%d, want 20,30,7", r, g, b)
	}
}

func TestAtClampsToBorder(t *testing.T) {
	m := imgbuf.New(2, 2, 1)
	copy(m.Pix, []uint8{1, 2, 3, 4})
	cases := []struct {
		x, y int
		want uint8
	}{
		{-5, -5, 1},
		{9, 0, 2},
		{0, 9, 3},
		{9, 9, 4},
	}
	for _, c := range cases {
		if got := m.At(c.x, c.y, 0); got != c.want {
			t.Errorf("At(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestLuminanceRec709(t *testing.T) {
	m := imgbuf.New(3, 1, 3)
	copy(m.Pix, []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255})
	l := imgbuf.Luminance(m)
	want := []uint8{54, 182, 18}
	for i, v := range want {
		if l.Pix[i] != v {
			t.Errorf("channel %d luminance = %d, want %d", i, l.Pix[i], v)
		}
	}
}

func TestToImageRGBOpaque(t *testing.T) {
	m := imgbuf.New(1, 1, 3)
	copy(m.Pix, []uint8{9, 8, 7})
	n, ok := m.ToImage().(*image.NRGBA)
	if !ok {
		t.Fatalf("ToImage returned %T, want *image.NRGBA", m.ToImage())
	}
	if got := n.NRGBAAt(0, 0); got != (color.NRGBA{9, 8, 7, 255}) {
		t.Fatalf("got %v", got)
	}
}

func TestRound8(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{-3, 0}, {0.49, 0}, {0.5, 1}, {127.5, 128}, {254.6, 255}, {1000, 255},
	}
	for _, c := range cases {
		if got := imgbuf.Round8(c.in); got != c.want {
			t.Errorf("Round8(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
