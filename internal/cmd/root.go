package cmd

import (
	"github.com/spf13/cobra"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/build"
)

var rootCmd = &cobra.Command{
	Use:   build.Slug,
	Short: "FASER data-quality analysis toolkit",
	Long: `FASER data-quality analysis toolkit.

It drives the per-run data-quality analysis of FASER physics NTuples:
running the analysis program for single runs, submitting one job per run
to HTCondor, and combining the per-run yield files into a single archive.
`,
}

// Execute adds all child commands to the root command and runs it. This is
// called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func registerCommands() {
	rootCmd.AddCommand(CmdRun())
	rootCmd.AddCommand(CmdSubmit())
	rootCmd.AddCommand(CmdCombine())
	rootCmd.AddCommand(CmdRuns())
	rootCmd.AddCommand(CmdValidate())
	rootCmd.AddCommand(CmdVersion())
}

func init() {
	registerCommands()
}
