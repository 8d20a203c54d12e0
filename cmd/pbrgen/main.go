package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"pbr-texgen/internal/config"
	"pbr-texgen/internal/parallel"
	"pbr-texgen/internal/pipeline"
)

var (
	v = config.New()

	configFile string
	logLevel   string
	flags      config.Flags
)

var rootCmd = &cobra.Command{
	Use:   "pbrgen",
	Short: "Generate PBR height, normal and roughness maps from albedo textures",
	Long: "pbrgen derives height, normal and roughness maps from a single albedo texture\n" +
		"and optionally packs them into BC3-compressed DDS textures.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a JSON, YAML or TOML config file")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.IntVar(&flags.Workers, "workers", 0, "Files processed concurrently (default: NumCPU)")
	pf.StringVarP(&flags.OutputDir, "output", "o", "", "Output directory (default: next to each source)")
	pf.StringVar(&flags.Format, "format", "", "Map format: png or webp (default: png)")

	pf.Int("threads", 0, "Row workers per map (default: NumCPU)")
	pf.String("height-strategy", "", "Height strategy: pyramid or simple")
	pf.Int("levels", 0, "Laplacian pyramid levels")
	pf.Bool("wide", false, "Carry pyramid differences unquantized")
	pf.Float64("strength", 0, "Normal map gradient strength")
	pf.Bool("flip-y", false, "Write DirectX-style normals (green down)")
	pf.String("roughness-strategy", "", "Roughness strategy: enhanced or simple")
	pf.Bool("pack", false, "Also write <stem>_albedo_height.dds and <stem>_normal_roughness.dds")
	pf.Bool("zstd", false, "Wrap DDS output in a zstd frame")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"threads", "threads"},
		{"height.strategy", "height-strategy"},
		{"height.pyramid.levels", "levels"},
		{"height.pyramid.wide", "wide"},
		{"normal.strength", "strength"},
		{"normal.flip_y", "flip-y"},
		{"roughness.strategy", "roughness-strategy"},
		{"pack.enabled", "pack"},
		{"pack.zstd", "zstd"},
	}
	for _, bf := range bindFlags {
		if err := v.BindPFlag(bf.key, pf.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}

	rootCmd.AddCommand(generateCmd, batchCmd, packCmd, inspectCmd)
}

func initLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig merges defaults, the config file, environment and flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	parallel.SetWorkers(cfg.Threads)
	return cfg, nil
}

func newGenerator(cfg config.Config) (*pipeline.Generator, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	return pipeline.New(opts)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
