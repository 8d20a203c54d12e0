// Package texture decodes albedo sources, finds them on disk and encodes
// generated maps.
package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"pbr-texgen/internal/imgbuf"
)

// Extensions lists the albedo file types Load understands, lowercase with
// the leading dot.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".tga", ".bmp", ".tif", ".tiff", ".webp"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads and decodes an image file into a 4-channel buffer.
func Load(path string) (*imgbuf.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return m, nil
}

type decoder struct {
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// decoders are matched by magic number. TGA has none and is the fallback.
var decoders = []decoder{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8", gif.Decode},
	{"BM", bmp.Decode},
	{"II*\x00", tiff.Decode},
	{"MM\x00*", tiff.Decode},
	{"RIFF", nativewebp.Decode},
}

// Decode sniffs the format of r and decodes it into a 4-channel buffer.
func Decode(r io.Reader) (*imgbuf.Image, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(8)

	decode := tga.Decode
	for _, d := range decoders {
		if strings.HasPrefix(string(head), d.magic) {
			decode = d.decode
			break
		}
	}

	img, err := decode(br)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}
	return imgbuf.FromImage(img), nil
}
