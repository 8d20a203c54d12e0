package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"pbr-texgen/internal/bc3"
	"pbr-texgen/internal/config"
	"pbr-texgen/internal/heightmap"
	"pbr-texgen/internal/roughness"
	"pbr-texgen/internal/texture"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Fatalf("Load without file = %+v, want %+v", cfg, config.Default())
	}
}

func TestLoadFileOverridesNestedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbrgen.yaml")
	body := `
format: webp
height:
  strategy: simple
  pyramid:
    levels: 5
roughness:
  classifier:
    stone: 0.9
pack:
  enabled: true
  zstd: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(config.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "webp" || cfg.Height.Strategy != heightmap.KindSimple || cfg.Height.Pyramid.Levels != 5 {
		t.Fatalf("height/format not applied: %+v", cfg)
	}
	if cfg.Roughness.Classifier.Stone != 0.9 {
		t.Fatalf("classifier.stone = %v", cfg.Roughness.Classifier.Stone)
	}
	// Untouched siblings keep their defaults.
	if cfg.Height.Pyramid.BoostStep != 0.15 || cfg.Roughness.Classifier.Organic != 0.65 {
		t.Fatalf("defaults lost: boost %v organic %v", cfg.Height.Pyramid.BoostStep, cfg.Roughness.Classifier.Organic)
	}
	if !cfg.Pack.Enabled || !cfg.Pack.Zstd {
		t.Fatalf("pack = %+v", cfg.Pack)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbrgen.json")
	os.WriteFile(path, []byte(`{"normal": {"strength": 2.5, "flip_y": true}, "roughness": {"strategy": "simple"}}`), 0644)
	cfg, err := config.Load(config.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Normal.Strength != 2.5 || !cfg.Normal.FlipY || cfg.Roughness.Strategy != roughness.KindSimple {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PBRGEN_HEIGHT_PYRAMID_LEVELS", "6")
	t.Setenv("PBRGEN_ROUGHNESS_WEIGHTS_SPECULAR", "0.5")
	t.Setenv("PBRGEN_PACK_ENABLED", "true")

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Height.Pyramid.Levels != 6 || cfg.Roughness.Weights.Specular != 0.5 || !cfg.Pack.Enabled {
		t.Fatalf("env not applied: levels %d specular %v pack %v",
			cfg.Height.Pyramid.Levels, cfg.Roughness.Weights.Specular, cfg.Pack.Enabled)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(config.New(), filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatalf("Load: got nil error for a missing file")
	}
}

func TestResolve(t *testing.T) {
	cfg := config.Config{Format: "", Workers: 0, OutputDir: "from-file"}
	cfg.Resolve(config.Flags{})
	if cfg.Format != "png" || cfg.Workers != runtime.NumCPU() || cfg.OutputDir != "from-file" {
		t.Fatalf("Resolve defaults: %+v", cfg)
	}

	cfg.Resolve(config.Flags{OutputDir: "out", Format: "webp", Workers: 3})
	if cfg.Format != "webp" || cfg.Workers != 3 || cfg.OutputDir != "out" {
		t.Fatalf("Resolve flags: %+v", cfg)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Pack.Enabled = true
	cfg.Pack.Perceptual = false
	opts, err := cfg.PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions: %v", err)
	}
	if !opts.Pack || opts.Format != texture.FormatPNG {
		t.Fatalf("opts = %+v", opts)
	}
	if opts.Packer.BC3.Weights != [3]float32{1, 1, 1} || !opts.Packer.BC3.WeighColourByAlpha {
		t.Fatalf("bc3 options = %+v", opts.Packer.BC3)
	}

	cfg.Pack.Perceptual = true
	opts, _ = cfg.PipelineOptions()
	if opts.Packer.BC3.Weights != bc3.PerceptualWeights {
		t.Fatalf("perceptual weights not applied: %v", opts.Packer.BC3.Weights)
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Format = "exr"
	cfg.Height.Pyramid.GuidedEpsilon = 0
	if _, err := cfg.PipelineOptions(); err == nil {
		t.Fatalf("PipelineOptions accepted an invalid config")
	}
}
