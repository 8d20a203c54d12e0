package packer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pbr-texgen/internal/bc3"
	"pbr-texgen/internal/dds"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/packer"
)

func rgbSource(w, h int) *imgbuf.Image {
	m := imgbuf.New(w, h, 3)
	for i := 0; i < len(m.Pix); i += 3 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = uint8(i/3), uint8(i/7), 99
	}
	return m
}

func stepAlpha(w, h int) *imgbuf.Image {
	m := imgbuf.New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			m.Pix[y*w+x] = 255
		}
	}
	return m
}

func TestPackSameSize(t *testing.T) {
	rgb := rgbSource(8, 8)
	out := packer.Pack(rgb, stepAlpha(8, 8))
	if out.Width != 8 || out.Height != 8 || out.Channels != 4 {
		t.Fatalf("got %dx%dx%d", out.Width, out.Height, out.Channels)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r, g, b := rgb.RGB(x, y)
			o := out.Offset(x, y)
			if out.Pix[o] != r || out.Pix[o+1] != g || out.Pix[o+2] != b {
				t.Fatalf("(%d,%d): colour not copied verbatim", x, y)
			}
			want := uint8(0)
			if x >= 4 {
				want = 255
			}
			if out.Pix[o+3] != want {
				t.Fatalf("(%d,%d): alpha %d, want %d", x, y, out.Pix[o+3], want)
			}
		}
	}
}

func TestPackResamplesAlphaSmoothly(t *testing.T) {
	out := packer.Pack(rgbSource(64, 64), stepAlpha(32, 32))
	if out.Width != 64 || out.Height != 64 {
		t.Fatalf("got %dx%d, want 64x64", out.Width, out.Height)
	}
	a := out.Pix[out.Offset(31, 20)+3]
	if a == 0 || a == 255 {
		t.Fatalf("alpha at the step = %d, want an interpolated value", a)
	}
	if out.Pix[out.Offset(2, 20)+3] != 0 || out.Pix[out.Offset(61, 20)+3] != 255 {
		t.Fatalf("alpha away from the step is not preserved")
	}
}

func TestPackUsesAlphaLuminance(t *testing.T) {
	alpha := imgbuf.New(4, 4, 3)
	for i := 0; i < len(alpha.Pix); i += 3 {
		alpha.Pix[i+1] = 255 // pure green
	}
	out := packer.Pack(rgbSource(4, 4), alpha)
	if a := out.Pix[3]; a != 182 {
		t.Fatalf("alpha = %d, want Rec. 709 green luminance 182", a)
	}
}

func TestSaveCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.dds")
	img := packer.Pack(rgbSource(64, 32), stepAlpha(64, 32))
	if err := packer.SaveCompressed(img, path, packer.DefaultOptions()); err != nil {
		t.Fatalf("SaveCompressed: %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if want := int64(128 + bc3.BlockCount(64, 32)*16); st.Size() != want {
		t.Fatalf("file is %d bytes, want %d", st.Size(), want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	parsed, err := dds.Read(f)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if parsed.Width() != 64 || parsed.Height() != 32 {
		t.Fatalf("header size %dx%d", parsed.Width(), parsed.Height())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want only the output", len(entries))
	}
}

func TestSaveCompressedRejectsDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dds")
	err := packer.SaveCompressed(imgbuf.New(10, 10, 4), path, packer.DefaultOptions())
	if !errors.Is(err, packer.ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}
	if packer.KindOf(err) != packer.KindDimension {
		t.Fatalf("KindOf = %s, want dimension", packer.KindOf(err))
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("rejected save left %d files", len(entries))
	}
}

func TestSaveCompressedIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.dds")
	err := packer.SaveCompressed(imgbuf.New(4, 4, 4), path, packer.DefaultOptions())
	if packer.KindOf(err) != packer.KindIO {
		t.Fatalf("KindOf(%v) = %s, want io", err, packer.KindOf(err))
	}
	if errors.Is(err, packer.ErrDimension) {
		t.Fatalf("I/O error matched ErrDimension")
	}
}

func TestPackAndSaveZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.dds.zst")
	opts := packer.DefaultOptions()
	opts.Zstd = true
	if err := packer.PackAndSave(rgbSource(16, 16), stepAlpha(16, 16), path, opts); err != nil {
		t.Fatalf("PackAndSave: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	f, err := dds.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Data) != bc3.BlockCount(16, 16)*bc3.BlockSize {
		t.Fatalf("payload %d bytes", len(f.Data))
	}
}
