package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <albedo> [albedo...]",
	Short: "Generate maps for individual albedo files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, src := range args {
		fmt.Printf("%s\n", src)
		res := g.Run(cmd.Context(), src, func(p int) {
			fmt.Printf("\r  [%3d%%]", p)
		})
		fmt.Println()

		if !res.Success {
			failed++
			fmt.Printf("  FAILED: %s\n", res.Error)
			continue
		}
		fmt.Printf("  height:    %s\n", res.HeightPath)
		fmt.Printf("  normal:    %s\n", res.NormalPath)
		fmt.Printf("  roughness: %s\n", res.RoughnessPath)
		for _, p := range res.PackedPaths {
			fmt.Printf("  packed:    %s\n", p)
		}
		for _, w := range res.Warnings {
			fmt.Printf("  warning:   %s\n", w)
		}
		fmt.Printf("  done in %.2fs\n", res.Elapsed.Seconds())
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(args))
		os.Exit(1)
	}
	return nil
}
