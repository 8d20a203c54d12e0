// Package roughness estimates microfacet roughness from an albedo image.
//
// The Enhanced strategy fuses six per-pixel cues (local frequency content,
// material class, texture variance, saturation, gradient and a specular hint)
// and smooths the result edge-aware. The Simple strategy maps local variance
// alone and stretches the histogram. Their outputs are not interchangeable.
package roughness

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"pbr-texgen/internal/filter"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/parallel"
)

// Strategy generates a single-channel roughness map with albedo's dimensions.
type Strategy interface {
	Generate(albedo *imgbuf.Image) *imgbuf.Image
}

// Kind names a strategy in configuration.
type Kind string

const (
	KindEnhanced Kind = "enhanced"
	KindSimple   Kind = "simple"
)

// Weights are the fusion weights of the Enhanced strategy. They should sum to 1.
type Weights struct {
	Frequency  float64 `mapstructure:"frequency"`
	Material   float64 `mapstructure:"material"`
	Variance   float64 `mapstructure:"variance"`
	Saturation float64 `mapstructure:"saturation"`
	Gradient   float64 `mapstructure:"gradient"`
	Specular   float64 `mapstructure:"specular"`
}

// Options selects and tunes a strategy.
type Options struct {
	Strategy   Kind       `mapstructure:"strategy"`
	Weights    Weights    `mapstructure:"weights"`
	Classifier Classifier `mapstructure:"classifier"`
}

// DefaultOptions returns the reference six-factor configuration.
func DefaultOptions() Options {
	return Options{
		Strategy: KindEnhanced,
		Weights: Weights{
			Frequency:  0.30,
			Material:   0.25,
			Variance:   0.20,
			Saturation: 0.10,
			Gradient:   0.10,
			Specular:   0.05,
		},
		Classifier: DefaultClassifier(),
	}
}

// New returns the strategy named by opts.Strategy. An empty name selects
// the Enhanced strategy.
func New(opts Options) (Strategy, error) {
	switch opts.Strategy {
	case KindEnhanced, "":
		return Enhanced{Weights: opts.Weights, Classifier: opts.Classifier}, nil
	case KindSimple:
		return Simple{}, nil
	default:
		return nil, fmt.Errorf("roughness: unknown strategy %q", opts.Strategy)
	}
}

// Generate runs the Enhanced strategy with reference options.
func Generate(albedo *imgbuf.Image) *imgbuf.Image {
	o := DefaultOptions()
	return Enhanced{Weights: o.Weights, Classifier: o.Classifier}.Generate(albedo)
}

const (
	varianceRadius  = 3 // 7×7
	frequencyRadius = 5 // 11×11
	highFreqDist2   = 1.5 * 1.5
)

// Enhanced is the six-factor strategy.
type Enhanced struct {
	Weights    Weights
	Classifier Classifier
}

func (s Enhanced) Generate(albedo *imgbuf.Image) *imgbuf.Image {
	w, h := albedo.Width, albedo.Height
	lum := lumaPlane(albedo)
	variance := varianceFactor(lum, w, h)

	raw := imgbuf.New(w, h, 1)
	parallel.Pixels(w, h, func(x, y int) {
		i := y*w + x
		r8, g8, b8 := albedo.RGB(x, y)
		c := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
		_, sat, _ := c.Hsv()
		chroma := chromaOf(c)
		l := lum[i]

		material := s.Classifier.Roughness(s.Classifier.Classify(sat, l, variance[i]))

		v := s.Weights.Frequency*frequencyContent(lum, w, h, x, y) +
			s.Weights.Material*material +
			s.Weights.Variance*variance[i] +
			s.Weights.Saturation*sat +
			s.Weights.Gradient*gradientFactor(lum, w, h, x, y) +
			s.Weights.Specular*specularHint(l, chroma)

		raw.Pix[i] = imgbuf.Trunc8(float32(clamp01(v) * 255))
	})

	return smoothEdgeAware(raw, variance)
}

// Simple is the variance-only strategy: 0.5 + (variance − 0.2)·2, then a
// min/max histogram stretch.
type Simple struct{}

func (Simple) Generate(albedo *imgbuf.Image) *imgbuf.Image {
	w, h := albedo.Width, albedo.Height
	variance := varianceFactor(lumaPlane(albedo), w, h)

	out := imgbuf.New(w, h, 1)
	for i, v := range variance {
		out.Pix[i] = imgbuf.Trunc8(float32(clamp01(0.5+(v-0.2)*2) * 255))
	}
	return filter.Stretch(out)
}

func lumaPlane(m *imgbuf.Image) []float64 {
	lum := make([]float64, m.Width*m.Height)
	parallel.Pixels(m.Width, m.Height, func(x, y int) {
		r, g, b := m.RGB(x, y)
		lum[y*m.Width+x] = float64(imgbuf.Luma(r, g, b))
	})
	return lum
}

func at(p []float64, w, h, x, y int) float64 {
	return p[min(max(y, 0), h-1)*w+min(max(x, 0), w-1)]
}

// frequencyContent is the share of squared luminance differences to the
// centre pixel that comes from its immediate neighbours (distance ≤ 1.5)
// within the 11×11 window. Flat windows report 0.
func frequencyContent(lum []float64, w, h, x, y int) float64 {
	centre := lum[y*w+x]
	var high, total float64
	for dy := -frequencyRadius; dy <= frequencyRadius; dy++ {
		for dx := -frequencyRadius; dx <= frequencyRadius; dx++ {
			d := at(lum, w, h, x+dx, y+dy) - centre
			e := d * d
			total += e
			if float64(dx*dx+dy*dy) <= highFreqDist2 {
				high += e
			}
		}
	}
	if total < 1e-12 {
		return 0
	}
	return high / total
}

// gradientFactor is the central-difference luminance gradient magnitude,
// scaled by 2 and clamped to [0,1].
func gradientFactor(lum []float64, w, h, x, y int) float64 {
	gx := (at(lum, w, h, x+1, y) - at(lum, w, h, x-1, y)) / 2
	gy := (at(lum, w, h, x, y+1) - at(lum, w, h, x, y-1)) / 2
	return clamp01(math.Hypot(gx, gy) * 2)
}

// specularHint is 0 for bright achromatic pixels, 0.2 for mid-bright
// near-achromatic (metal-like) pixels, 0.5 otherwise.
func specularHint(luma, chroma float64) float64 {
	switch {
	case luma > 0.7 && chroma < 0.15:
		return 0
	case luma > 0.4 && chroma < 0.2:
		return 0.2
	default:
		return 0.5
	}
}

func chromaOf(c colorful.Color) float64 {
	return max(c.R, c.G, c.B) - min(c.R, c.G, c.B)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
