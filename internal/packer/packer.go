// Package packer merges two maps into one RGBA texture and stores it as a
// BC3-compressed DDS file.
package packer

import (
	"bufio"
	"os"
	"path/filepath"

	"pbr-texgen/internal/bc3"
	"pbr-texgen/internal/dds"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/postprocess"
)

// Options controls compression and the container.
type Options struct {
	BC3  bc3.Options
	Zstd bool
}

// DefaultOptions uses perceptual, alpha-weighted BC3 and a plain container.
func DefaultOptions() Options {
	return Options{BC3: bc3.DefaultOptions()}
}

// Pack returns a 4-channel image with rgb's colour and alpha's luminance as
// alpha. rgb's size wins: alpha is resampled to it when they differ. Gray rgb
// sources are replicated to all three colour channels.
func Pack(rgb, alpha *imgbuf.Image) *imgbuf.Image {
	a := alpha
	if a.Channels != 1 {
		a = imgbuf.Luminance(a)
	}
	if !a.SameSize(rgb) {
		a = postprocess.Resize(a, rgb.Width, rgb.Height)
	}

	out := imgbuf.New(rgb.Width, rgb.Height, 4)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+rgb.Channels, j+4 {
		if rgb.Channels == 1 {
			v := rgb.Pix[i]
			out.Pix[j], out.Pix[j+1], out.Pix[j+2] = v, v, v
		} else {
			out.Pix[j], out.Pix[j+1], out.Pix[j+2] = rgb.Pix[i], rgb.Pix[i+1], rgb.Pix[i+2]
		}
		out.Pix[j+3] = a.Pix[j/4]
	}
	return out
}

// SaveCompressed BC3-compresses img and writes it as a DDS file at path.
// Sizes that are not multiples of 4 fail with a KindDimension error before
// any I/O. The file is written to a temporary sibling and renamed into place
// once flushed and synced, so path is either absent, unchanged or complete.
func SaveCompressed(img *imgbuf.Image, path string, opts Options) error {
	if img.Width <= 0 || img.Height <= 0 || img.Width%4 != 0 || img.Height%4 != 0 {
		return dimensionError(path, img.Width, img.Height)
	}

	blocks, err := bc3.Encode(img, opts.BC3)
	if err != nil {
		return dimensionError(path, img.Width, img.Height)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return ioError("create", path, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := dds.Write(bw, img.Width, img.Height, blocks, dds.WriteOptions{Zstd: opts.Zstd}); err != nil {
		return ioError("write", path, err)
	}
	if err := bw.Flush(); err != nil {
		return ioError("flush", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return ioError("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		committed = true
		return ioError("rename", path, err)
	}
	committed = true
	return nil
}

// PackAndSave is Pack followed by SaveCompressed.
func PackAndSave(rgb, alpha *imgbuf.Image, path string, opts Options) error {
	if rgb.Width%4 != 0 || rgb.Height%4 != 0 || rgb.Width <= 0 || rgb.Height <= 0 {
		return dimensionError(path, rgb.Width, rgb.Height)
	}
	return SaveCompressed(Pack(rgb, alpha), path, opts)
}
