package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pbr-texgen/internal/bc3"
	"pbr-texgen/internal/dds"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/normalmap"
	"pbr-texgen/internal/postprocess"
	"pbr-texgen/internal/texture"
)

var (
	previewPath string
	previewSize int
	splitAlpha  bool
	tensorPath  string
	tensorSigma float64
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.dds>",
	Short: "Print a DDS header and optionally decode a preview",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&previewPath, "preview", "", "Decode the texture and write it as PNG or WebP")
	f.IntVar(&previewSize, "size", 0, "Longest preview side (0 keeps the texture size)")
	f.BoolVar(&splitAlpha, "alpha", false, "Preview the alpha channel as grayscale")
	f.StringVar(&tensorPath, "tensor", "", "Write a structure-tensor coherence map of the alpha channel")
	f.Float64Var(&tensorSigma, "sigma", 1.5, "Structure tensor window sigma")
}

func runInspect(cmd *cobra.Command, args []string) error {
	fh, err := os.Open(args[0])
	if err != nil {
		return err
	}
	file, err := dds.Read(fh)
	fh.Close()
	if err != nil {
		return err
	}

	h := file.Header
	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Size:        %dx%d\n", h.Width, h.Height)
	fmt.Printf("Format:      %s\n", string(h.PixelFormat.FourCC[:]))
	fmt.Printf("Flags:       0x%05X\n", h.Flags)
	fmt.Printf("Linear size: %d\n", h.PitchOrLinearSize)
	fmt.Printf("Mip levels:  %d\n", h.MipMapCount)
	fmt.Printf("Blocks:      %d\n", len(file.Data)/bc3.BlockSize)

	if previewPath == "" && tensorPath == "" {
		return nil
	}

	decoded, err := bc3.Decode(file.Data, file.Width(), file.Height())
	if err != nil {
		return err
	}

	if previewPath != "" {
		img := decoded
		if splitAlpha {
			img = alphaPlane(img)
		}
		if err := savePreview(previewPath, img); err != nil {
			return err
		}
	}

	if tensorPath != "" {
		// The alpha of an albedo/height texture is the height map.
		field := normalmap.StructureTensor(alphaPlane(decoded), tensorSigma)
		if err := savePreview(tensorPath, field.CoherenceImage()); err != nil {
			return err
		}
	}
	return nil
}

func savePreview(path string, img *imgbuf.Image) error {
	if previewSize > 0 {
		img = postprocess.Fit(img, previewSize)
	}
	format := texture.FormatPNG
	if strings.EqualFold(filepath.Ext(path), texture.FormatWebP.Ext()) {
		format = texture.FormatWebP
	}
	if err := texture.Save(path, img, format); err != nil {
		return err
	}
	fmt.Printf("Wrote:       %s (%dx%d)\n", path, img.Width, img.Height)
	return nil
}

func alphaPlane(m *imgbuf.Image) *imgbuf.Image {
	out := imgbuf.New(m.Width, m.Height, 1)
	for i := range out.Pix {
		out.Pix[i] = m.Pix[i*4+3]
	}
	return out
}
