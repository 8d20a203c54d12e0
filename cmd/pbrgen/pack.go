package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pbr-texgen/internal/packer"
	"pbr-texgen/internal/texture"
)

var packCmd = &cobra.Command{
	Use:   "pack <rgb> <alpha> <out.dds>",
	Short: "Pack an RGB texture and a grayscale alpha into a BC3 DDS",
	Long: "pack takes the colour channels of <rgb> and the luminance of <alpha>,\n" +
		"resampling alpha to the colour size, and writes a DXT5 DDS. Both\n" +
		"dimensions must be multiples of 4.",
	Args: cobra.ExactArgs(3),
	RunE: runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	rgb, err := texture.Load(args[0])
	if err != nil {
		return err
	}
	alpha, err := texture.Load(args[1])
	if err != nil {
		return err
	}
	if err := packer.PackAndSave(rgb, alpha, args[2], opts.Packer); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", args[2], rgb.Width, rgb.Height)
	return nil
}
