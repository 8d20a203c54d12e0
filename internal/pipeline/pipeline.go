// Package pipeline turns one albedo texture into height, normal and
// roughness maps on disk, optionally packing them into BC3 DDS textures.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"pbr-texgen/internal/heightmap"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/normalmap"
	"pbr-texgen/internal/packer"
	"pbr-texgen/internal/roughness"
	"pbr-texgen/internal/texture"
)

// Options configures a Generator.
type Options struct {
	// OutputDir receives the maps. Empty writes next to the source.
	OutputDir string
	Format    texture.Format

	Height    heightmap.Options
	Normal    normalmap.Options
	Roughness roughness.Options

	// Pack additionally writes <stem>_albedo_height.dds and
	// <stem>_normal_roughness.dds.
	Pack   bool
	Packer packer.Options
}

// DefaultOptions returns the reference strategies, PNG output and no packing.
func DefaultOptions() Options {
	return Options{
		Format:    texture.FormatPNG,
		Height:    heightmap.DefaultOptions(),
		Normal:    normalmap.DefaultOptions(),
		Roughness: roughness.DefaultOptions(),
		Packer:    packer.DefaultOptions(),
	}
}

// Result is the status record of one run.
type Result struct {
	Source        string        `json:"source"`
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Progress      int           `json:"progress"`
	HeightPath    string        `json:"height_path,omitempty"`
	NormalPath    string        `json:"normal_path,omitempty"`
	RoughnessPath string        `json:"roughness_path,omitempty"`
	PackedPaths   []string      `json:"packed_paths,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Maps are the three generated channels of one albedo.
type Maps struct {
	Height    *imgbuf.Image
	Normal    *imgbuf.Image
	Roughness *imgbuf.Image
}

// ProgressFunc receives integer percentages at stage boundaries.
type ProgressFunc func(percent int)

// Generator runs the pipeline. It holds no per-run state and may be shared
// across goroutines.
type Generator struct {
	opts      Options
	height    heightmap.Strategy
	roughness roughness.Strategy
}

// New validates opts and resolves the strategies.
func New(opts Options) (*Generator, error) {
	hs, err := heightmap.New(opts.Height)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	rs, err := roughness.New(opts.Roughness)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if _, err := texture.ParseFormat(string(opts.Format)); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &Generator{opts: opts, height: hs, roughness: rs}, nil
}

// Options returns the configuration the generator was built with.
func (g *Generator) Options() Options { return g.opts }

// Generate computes the three maps. Height and normal run concurrently,
// the normal task deriving its own height map, and roughness runs alongside
// them. ctx is checked before the work starts and after it joins; the
// per-pixel loops themselves are not interruptible.
func (g *Generator) Generate(ctx context.Context, albedo *imgbuf.Image) (*Maps, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m Maps
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		m.Height = timed("height", func() *imgbuf.Image { return g.height.Generate(albedo) })
	}()
	go func() {
		defer wg.Done()
		m.Normal = timed("normal", func() *imgbuf.Image {
			return normalmap.GenerateWith(g.height.Generate(albedo), g.opts.Normal)
		})
	}()
	go func() {
		defer wg.Done()
		m.Roughness = timed("roughness", func() *imgbuf.Image { return g.roughness.Generate(albedo) })
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &m, nil
}

func timed(stage string, fn func() *imgbuf.Image) *imgbuf.Image {
	start := time.Now()
	out := fn()
	Logger().Debug("stage done", "stage", stage, "elapsed", time.Since(start))
	return out
}

// Run loads albedoPath, generates the maps and writes them. It never
// returns an error; failures are reported in the Result. progress may be nil.
func (g *Generator) Run(ctx context.Context, albedoPath string, progress ProgressFunc) Result {
	start := time.Now()
	res := Result{Source: albedoPath}
	report := func(p int) {
		res.Progress = p
		if progress != nil {
			progress(p)
		}
	}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}
	report(0)

	albedo, err := texture.Load(albedoPath)
	if err != nil {
		return fail(fmt.Errorf("load image: %w", err))
	}
	Logger().Debug("loaded albedo", "path", albedoPath, "width", albedo.Width, "height", albedo.Height)
	report(10)

	maps, err := g.Generate(ctx, albedo)
	if err != nil {
		return fail(err)
	}
	report(70)

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	dir := g.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(albedoPath)
	}
	stem := Stem(albedoPath)
	ext := g.opts.Format.Ext()

	outputs := []struct {
		name string
		img  *imgbuf.Image
		dst  *string
	}{
		{"height", maps.Height, &res.HeightPath},
		{"normal", maps.Normal, &res.NormalPath},
		{"roughness", maps.Roughness, &res.RoughnessPath},
	}
	for _, o := range outputs {
		path := filepath.Join(dir, stem+"_"+o.name+ext)
		if err := texture.Save(path, o.img, g.opts.Format); err != nil {
			return fail(fmt.Errorf("save %s map: %w", o.name, err))
		}
		*o.dst = path
		Logger().Info("wrote map", "map", o.name, "path", path)
	}
	report(90)

	if g.opts.Pack {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := g.pack(&res, dir, stem, albedo, maps); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	report(100)
	res.Elapsed = time.Since(start)
	return res
}

// pack writes the two terrain textures. Size violations become warnings;
// I/O failures fail the run.
func (g *Generator) pack(res *Result, dir, stem string, albedo *imgbuf.Image, maps *Maps) error {
	pairs := []struct {
		suffix     string
		rgb, alpha *imgbuf.Image
	}{
		{"_albedo_height", albedo, maps.Height},
		{"_normal_roughness", maps.Normal, maps.Roughness},
	}
	for _, p := range pairs {
		path := filepath.Join(dir, stem+p.suffix+".dds")
		err := packer.PackAndSave(p.rgb, p.alpha, path, g.opts.Packer)
		switch {
		case errors.Is(err, packer.ErrDimension):
			msg := fmt.Sprintf("skipped %s: %dx%d is not a multiple of 4", filepath.Base(path), p.rgb.Width, p.rgb.Height)
			res.Warnings = append(res.Warnings, msg)
			Logger().Warn("skipped packing", "path", path, "width", p.rgb.Width, "height", p.rgb.Height)
		case err != nil:
			return fmt.Errorf("pack: %w", err)
		default:
			res.PackedPaths = append(res.PackedPaths, path)
			Logger().Info("wrote packed texture", "path", path)
		}
	}
	return nil
}

// Stem is the source file name without directory or extension, keeping the
// original case.
func Stem(path string) string {
	base := filepath.Base(path)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if stem == "" {
		return "texture"
	}
	return stem
}
