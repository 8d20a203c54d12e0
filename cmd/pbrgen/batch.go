package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pbr-texgen/internal/batch"
	"pbr-texgen/internal/texture"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Generate maps for every albedo texture in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.BoolP("recursive", "r", false, "Descend into subdirectories")
	f.Bool("manifest", true, "Write manifest.json into the output directory")
	if err := v.BindPFlag("recursive", f.Lookup("recursive")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("manifest", f.Lookup("manifest")); err != nil {
		panic(err)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	dir := args[0]
	idx, err := texture.BuildIndex(dir, cfg.Recursive)
	if err != nil {
		return err
	}
	sources := idx.Paths()
	if len(sources) == 0 {
		fmt.Println("No textures to process.")
		return nil
	}

	out := cfg.OutputDir
	if out == "" {
		out = "next to each source"
	}
	fmt.Printf("PBR map generation (%s, %s)\n", cfg.Height.Strategy, cfg.Roughness.Strategy)
	fmt.Printf("Textures: %d, Workers: %d\n", len(sources), cfg.Workers)
	fmt.Printf("Output: %s\n", out)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(cmd.Context(), batch.Config{
		Generator: g,
		Workers:   cfg.Workers,
		Report: func(done, total int, rate float64) {
			fmt.Printf("  [%d/%d] %.1f textures/s\n", done, total, rate)
		},
	}, sources)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	ok, failed := batch.Summary(results)
	fmt.Printf("Generated: %d/%d\n", ok, len(results))

	var warnings int
	for _, r := range results {
		warnings += len(r.Warnings)
	}
	if warnings > 0 {
		fmt.Printf("Packing skipped: %d textures\n", warnings)
	}

	if failed > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			if shown == 20 {
				fmt.Printf("  ... and %d more\n", failed-shown)
				break
			}
			fmt.Printf("  %s: %s\n", r.Source, r.Error)
			shown++
		}
	}

	if cfg.Manifest {
		manifestDir := cfg.OutputDir
		if manifestDir == "" {
			manifestDir = dir
		}
		manifestPath := filepath.Join(manifestDir, "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			return err
		}
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
