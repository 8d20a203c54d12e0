package config

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"pbr-texgen/internal/bc3"
	"pbr-texgen/internal/heightmap"
	"pbr-texgen/internal/normalmap"
	"pbr-texgen/internal/packer"
	"pbr-texgen/internal/pipeline"
	"pbr-texgen/internal/roughness"
	"pbr-texgen/internal/texture"
)

// EnvPrefix prefixes environment overrides: height.pyramid.levels is read
// from PBRGEN_HEIGHT_PYRAMID_LEVELS.
const EnvPrefix = "PBRGEN"

// Config holds every tunable of a run.
type Config struct {
	OutputDir string `mapstructure:"output_dir"`
	Format    string `mapstructure:"format"`
	Workers   int    `mapstructure:"workers"` // files processed concurrently
	Threads   int    `mapstructure:"threads"` // row workers per map, 0 = NumCPU
	Recursive bool   `mapstructure:"recursive"`
	Manifest  bool   `mapstructure:"manifest"`

	Height    heightmap.Options `mapstructure:"height"`
	Normal    normalmap.Options `mapstructure:"normal"`
	Roughness roughness.Options `mapstructure:"roughness"`
	Pack      Pack              `mapstructure:"pack"`
}

// Pack configures DDS output.
type Pack struct {
	Enabled bool `mapstructure:"enabled"`
	Zstd    bool `mapstructure:"zstd"`
	// Perceptual weighs BC3 colour error by luma coefficients instead of
	// treating channels equally.
	Perceptual         bool `mapstructure:"perceptual"`
	WeighColourByAlpha bool `mapstructure:"weigh_colour_by_alpha"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Format:    string(texture.FormatPNG),
		Manifest:  true,
		Height:    heightmap.DefaultOptions(),
		Normal:    normalmap.DefaultOptions(),
		Roughness: roughness.DefaultOptions(),
		Pack:      Pack{Perceptual: true, WeighColourByAlpha: true},
	}
}

// New returns a viper instance seeded with Default values and reading
// PBRGEN_* environment overrides.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, "", reflect.ValueOf(Default()))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every leaf field of a mapstructure-tagged struct so
// that environment variables and bound flags resolve for nested keys.
func setDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		key := prefix + name
		f := rv.Field(i)
		if f.Kind() == reflect.Struct {
			setDefaults(v, key+".", f)
			continue
		}
		v.SetDefault(key, f.Interface())
	}
}

// Load reads an optional config file (JSON, YAML or TOML by extension) into
// v and decodes the merged settings. An empty path uses defaults, bound
// flags and the environment only.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Format    string
	Workers   int
}

// Resolve applies flags and fills unset fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Format == "" {
		c.Format = string(texture.FormatPNG)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports settings no run could use.
func (c *Config) Validate() error {
	var errs []error
	if _, err := texture.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Height.Pyramid.Levels < 0 {
		errs = append(errs, fmt.Errorf("height.pyramid.levels must be >= 0, got %d", c.Height.Pyramid.Levels))
	}
	if c.Height.Pyramid.GuidedEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("height.pyramid.guided_epsilon must be > 0"))
	}
	w := c.Roughness.Weights
	if sum := w.Frequency + w.Material + w.Variance + w.Saturation + w.Gradient + w.Specular; sum <= 0 {
		errs = append(errs, fmt.Errorf("roughness.weights must not all be zero"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// PipelineOptions converts the configuration for pipeline.New.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	format, _ := texture.ParseFormat(c.Format)

	bopts := bc3.Options{Weights: [3]float32{1, 1, 1}, WeighColourByAlpha: c.Pack.WeighColourByAlpha}
	if c.Pack.Perceptual {
		bopts.Weights = bc3.PerceptualWeights
	}

	return pipeline.Options{
		OutputDir: c.OutputDir,
		Format:    format,
		Height:    c.Height,
		Normal:    c.Normal,
		Roughness: c.Roughness,
		Pack:      c.Pack.Enabled,
		Packer:    packer.Options{BC3: bopts, Zstd: c.Pack.Zstd},
	}, nil
}
