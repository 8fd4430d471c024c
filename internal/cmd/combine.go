package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/yield"
)

// CmdCombine creates and returns a cobra command for combining per-run
// yield files.
func CmdCombine() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "combine [flags] <yield file> [yield file ...]",
			Short: "Combine per-run yield files into a single archive",
			Long: `Combine per-run yield files into a single archive.

Yield histograms are binned by run number, so combining concatenates the
run bins of each input onto one shared axis instead of summing them. Two
inputs covering the same run bin are an error.

Example:
  faserdq combine -o combined.yoda output/16000.yoda output/16001.yoda
`,
			Args: cobra.MinimumNArgs(1),
		}, combineFlags, runCombine,
	)
}

var combineFlags = []commandLineFlag{combinedFileFlag}

func runCombine(ctx *Context, args []string) error {
	sets := make([]yield.Set, 0, len(args))
	for _, file := range args {
		set, err := yield.ReadFile(file)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "Read yield file", "file", file, "histograms", len(set))
		sets = append(sets, set)
	}

	merged, err := yield.Merge(sets)
	if err != nil {
		return err
	}

	output, err := ctx.StringParam("output")
	if err != nil {
		return err
	}
	if err := yield.WriteFile(output, merged); err != nil {
		return err
	}

	logger.Info(ctx, "Wrote combined yield file",
		"file", output,
		"inputs", len(args),
		"histograms", len(merged),
	)
	if !ctx.Quiet {
		fmt.Println(output)
	}
	return nil
}
