package texture

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"pbr-texgen/internal/imgbuf"
)

// Format is a lossless output encoding for generated maps.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png", "webp" and the empty string (PNG).
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatWebP:
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("texture: unknown output format %q", s)
	}
}

// Ext returns the file extension with the leading dot.
func (f Format) Ext() string {
	if f == FormatWebP {
		return ".webp"
	}
	return ".png"
}

// Encode writes m losslessly. One-channel maps stay gray in PNG.
func Encode(w io.Writer, m *imgbuf.Image, f Format) error {
	switch f {
	case FormatWebP:
		return nativewebp.Encode(w, m.ToImage(), nil)
	case FormatPNG, "":
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, m.ToImage())
	default:
		return fmt.Errorf("texture: unknown output format %q", f)
	}
}

// Save encodes m to path, creating parent directories.
func Save(path string, m *imgbuf.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("texture: mkdir %s: %w", filepath.Dir(path), err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", path, err)
	}

	bw := bufio.NewWriter(out)
	if err := Encode(bw, m, f); err != nil {
		out.Close()
		return fmt.Errorf("texture: encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("texture: write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("texture: close %s: %w", path, err)
	}
	return nil
}
