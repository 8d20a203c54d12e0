package roughness

// Material is a coarse surface class inferred from colour statistics.
type Material int

const (
	MaterialDefault Material = iota
	MaterialMetalSmooth
	MaterialMetalBrushed
	MaterialDiffuse // high-saturation painted/plastic surfaces
	MaterialOrganic // mid-saturation wood, leather, foliage
	MaterialStone   // dark, low-saturation stone and concrete
)

func (m Material) String() string {
	switch m {
	case MaterialMetalSmooth:
		return "metal-smooth"
	case MaterialMetalBrushed:
		return "metal-brushed"
	case MaterialDiffuse:
		return "diffuse"
	case MaterialOrganic:
		return "organic"
	case MaterialStone:
		return "stone"
	default:
		return "default"
	}
}

// Classifier holds the hand-tuned thresholds and per-class roughness values
// of the material rule set. Saturation, luminance and variance inputs are in
// [0,1]; variance is the scaled texture-variance factor.
type Classifier struct {
	MetalMaxSaturation     float64 `mapstructure:"metal_max_saturation"`
	MetalSmoothMinLuma     float64 `mapstructure:"metal_smooth_min_luma"`
	MetalSmoothMaxVariance float64 `mapstructure:"metal_smooth_max_variance"`
	MetalBrushedMinLuma    float64 `mapstructure:"metal_brushed_min_luma"`
	MetalBrushedMaxVar     float64 `mapstructure:"metal_brushed_max_variance"`
	DiffuseMinSaturation   float64 `mapstructure:"diffuse_min_saturation"`
	OrganicMinSaturation   float64 `mapstructure:"organic_min_saturation"`
	StoneMaxSaturation     float64 `mapstructure:"stone_max_saturation"`
	StoneMaxLuma           float64 `mapstructure:"stone_max_luma"`

	MetalSmooth  float64 `mapstructure:"metal_smooth"`
	MetalBrushed float64 `mapstructure:"metal_brushed"`
	Diffuse      float64 `mapstructure:"diffuse"`
	Organic      float64 `mapstructure:"organic"`
	Stone        float64 `mapstructure:"stone"`
	Default      float64 `mapstructure:"default"`
}

// DefaultClassifier returns the reference rule set. The thresholds were tuned
// by eye against a small texture set and are not expected to generalize.
func DefaultClassifier() Classifier {
	return Classifier{
		MetalMaxSaturation:     0.15,
		MetalSmoothMinLuma:     0.5,
		MetalSmoothMaxVariance: 0.02,
		MetalBrushedMinLuma:    0.4,
		MetalBrushedMaxVar:     0.1,
		DiffuseMinSaturation:   0.5,
		OrganicMinSaturation:   0.2,
		StoneMaxSaturation:     0.2,
		StoneMaxLuma:           0.4,

		MetalSmooth:  0.15,
		MetalBrushed: 0.25,
		Diffuse:      0.75,
		Organic:      0.65,
		Stone:        0.80,
		Default:      0.5,
	}
}

// Classify applies the rules in order; the first match wins.
func (c Classifier) Classify(saturation, luma, variance float64) Material {
	switch {
	case saturation < c.MetalMaxSaturation && luma > c.MetalSmoothMinLuma && variance < c.MetalSmoothMaxVariance:
		return MaterialMetalSmooth
	case saturation < c.MetalMaxSaturation && luma > c.MetalBrushedMinLuma && variance < c.MetalBrushedMaxVar:
		return MaterialMetalBrushed
	case saturation > c.DiffuseMinSaturation:
		return MaterialDiffuse
	case saturation > c.OrganicMinSaturation:
		return MaterialOrganic
	case saturation < c.StoneMaxSaturation && luma < c.StoneMaxLuma:
		return MaterialStone
	default:
		return MaterialDefault
	}
}

// Roughness returns the class roughness for m.
func (c Classifier) Roughness(m Material) float64 {
	switch m {
	case MaterialMetalSmooth:
		return c.MetalSmooth
	case MaterialMetalBrushed:
		return c.MetalBrushed
	case MaterialDiffuse:
		return c.Diffuse
	case MaterialOrganic:
		return c.Organic
	case MaterialStone:
		return c.Stone
	default:
		return c.Default
	}
}
