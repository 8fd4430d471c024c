package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/histospec"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

// CmdValidate creates and returns a cobra command validating a histogram
// configuration file.
func CmdValidate() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "validate [flags] [histogram config]",
			Short: "Validate a histogram configuration file",
			Long: `Validate a histogram configuration file.

Without an argument the configured histograms file is checked. The base
histogram configuration, when set, is merged underneath before
validation, the same way the analysis does it.
`,
			Args: cobra.MaximumNArgs(1),
		}, nil, runValidate,
	)
}

func runValidate(ctx *Context, args []string) error {
	file := ctx.Config.Paths.HistogramsFile
	if len(args) > 0 {
		file = args[0]
	}

	var opts []histospec.LoadOption
	if ctx.Config.Paths.BaseHistograms != "" {
		opts = append(opts, histospec.WithBaseConfig(ctx.Config.Paths.BaseHistograms))
	}

	cfg, err := histospec.Load(ctx, file, opts...)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Histogram config is valid", "file", file, "histograms", len(cfg.Histograms))
	if !ctx.Quiet {
		for _, name := range cfg.Names() {
			h, _ := cfg.Lookup(name)
			fmt.Printf("%s: %d bins in [%g, %g) of %s\n", name, h.Bins, h.Low, h.High, h.Column)
		}
	}
	return nil
}
