// Package heightmap derives a single-channel elevation proxy from an albedo
// image.
//
// Two strategies are available. Pyramid is the canonical, higher-fidelity
// path: Laplacian pyramid detail boosting, guided filtering against the
// source luminance, clipped histogram equalization and unsharp masking.
// Simple is a cheaper contrast-stretch path. Their outputs are not
// interchangeable; pick one per texture set.
package heightmap

import (
	"fmt"

	"pbr-texgen/internal/filter"
	"pbr-texgen/internal/imgbuf"
)

// Strategy generates a height map with the same dimensions as albedo.
type Strategy interface {
	Generate(albedo *imgbuf.Image) *imgbuf.Image
}

// Kind names a strategy in configuration.
type Kind string

const (
	KindPyramid Kind = "pyramid"
	KindSimple  Kind = "simple"
)

// Options selects and tunes a strategy.
type Options struct {
	Strategy Kind           `mapstructure:"strategy"`
	Pyramid  PyramidOptions `mapstructure:"pyramid"`
	Simple   SimpleOptions  `mapstructure:"simple"`
}

// PyramidOptions tunes the Pyramid strategy.
type PyramidOptions struct {
	Levels          int     `mapstructure:"levels"`     // band-pass levels, residual excluded
	BoostStep       float64 `mapstructure:"boost_step"` // per-level detail boost increment
	GuidedRadius    int     `mapstructure:"guided_radius"`
	GuidedEpsilon   float64 `mapstructure:"guided_epsilon"`
	ClipLimit       float64 `mapstructure:"clip_limit"`
	UnsharpSigma    float64 `mapstructure:"unsharp_sigma"`
	UnsharpStrength float64 `mapstructure:"unsharp_strength"`
	Wide            bool    `mapstructure:"wide"` // carry band differences unquantized
}

// SimpleOptions tunes the Simple strategy.
type SimpleOptions struct {
	ContrastRadius   int     `mapstructure:"contrast_radius"`
	ContrastStrength float64 `mapstructure:"contrast_strength"`
	BlurSigma        float64 `mapstructure:"blur_sigma"`
}

// DefaultOptions returns the reference parameters with the Pyramid strategy.
func DefaultOptions() Options {
	return Options{
		Strategy: KindPyramid,
		Pyramid: PyramidOptions{
			Levels:          3,
			BoostStep:       0.15,
			GuidedRadius:    8,
			GuidedEpsilon:   0.01,
			ClipLimit:       2.5,
			UnsharpSigma:    1.5,
			UnsharpStrength: 1.2,
		},
		Simple: SimpleOptions{
			ContrastRadius:   20,
			ContrastStrength: 3.0,
			BlurSigma:        0.5,
		},
	}
}

// New returns the strategy named by opts.Strategy. An empty name selects
// the Pyramid strategy.
func New(opts Options) (Strategy, error) {
	switch opts.Strategy {
	case KindPyramid, "":
		return Pyramid{opts.Pyramid}, nil
	case KindSimple:
		return Simple{opts.Simple}, nil
	default:
		return nil, fmt.Errorf("heightmap: unknown strategy %q", opts.Strategy)
	}
}

// Generate runs the Pyramid strategy with reference parameters.
func Generate(albedo *imgbuf.Image) *imgbuf.Image {
	return Pyramid{DefaultOptions().Pyramid}.Generate(albedo)
}

// Pyramid is the multi-scale strategy.
type Pyramid struct {
	Options PyramidOptions
}

func (s Pyramid) Generate(albedo *imgbuf.Image) *imgbuf.Image {
	o := s.Options
	gray := imgbuf.PlaneFrom(imgbuf.Luminance(albedo))

	pyr := BuildPyramid(gray, o.Levels, o.Wide)
	pyr.Enhance(o.BoostStep)
	combined := pyr.Reconstruct()
	combined.Quantize()

	smoothed := filter.Guided(combined, gray, o.GuidedRadius, o.GuidedEpsilon).Gray()
	equalized := filter.EqualizeClipped(smoothed, o.ClipLimit)
	return filter.Unsharp(equalized, o.UnsharpSigma, o.UnsharpStrength)
}

// Simple is the low-cost strategy: stretch, local contrast, light blur,
// stretch again.
type Simple struct {
	Options SimpleOptions
}

func (s Simple) Generate(albedo *imgbuf.Image) *imgbuf.Image {
	o := s.Options
	stretched := filter.Stretch(imgbuf.Luminance(albedo))
	contrast := filter.LocalContrast(imgbuf.PlaneFrom(stretched), o.ContrastRadius, o.ContrastStrength)
	blurred := filter.Gaussian(contrast, o.BlurSigma).Gray()
	return filter.Stretch(blurred)
}
