package batch_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pbr-texgen/internal/batch"
	"pbr-texgen/internal/imgbuf"
	"pbr-texgen/internal/pipeline"
	"pbr-texgen/internal/texture"
)

func sources(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var out []string
	for i, n := range names {
		m := imgbuf.New(8, 8, 3)
		for j := range m.Pix {
			m.Pix[j] = uint8(j*(i+3) + i)
		}
		p := filepath.Join(dir, n)
		if err := texture.Save(p, m, texture.FormatPNG); err != nil {
			t.Fatalf("Save: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func generator(t *testing.T, outDir string) *pipeline.Generator {
	t.Helper()
	opts := pipeline.DefaultOptions()
	opts.OutputDir = outDir
	g, err := pipeline.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestRunAndManifest(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	files := sources(t, src, "a.png", "b.png", "c.png")
	files = append(files, filepath.Join(src, "missing.png"))

	cfg := batch.Config{
		Generator: generator(t, out),
		Workers:   2,
		Interval:  time.Millisecond,
		Report:    func(done, total int, rate float64) {},
	}
	results := batch.Run(context.Background(), cfg, files)

	if len(results) != len(files) {
		t.Fatalf("%d results for %d files", len(results), len(files))
	}
	for i, r := range results {
		if r.Source != files[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Source, files[i])
		}
	}
	if ok, failed := batch.Summary(results); ok != 3 || failed != 1 {
		t.Fatalf("summary ok=%d failed=%d", ok, failed)
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := batch.WriteManifest(manifest, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var entries []batch.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if entries[0].Height != "a_height.png" || entries[1].Normal != "b_normal.png" {
		t.Fatalf("entries = %+v", entries[:2])
	}
	if entries[3].Success || entries[3].Error == "" {
		t.Fatalf("missing source entry = %+v", entries[3])
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	files := sources(t, t.TempDir(), "x.png", "y.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := batch.Run(ctx, batch.Config{Generator: generator(t, t.TempDir()), Workers: 1}, files)
	if ok, _ := batch.Summary(results); ok != 0 {
		t.Fatalf("%d files succeeded after cancellation", ok)
	}
}
