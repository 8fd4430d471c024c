package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/analysis"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/fileutil"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

// ErrRunNumberFormat is returned when the run number argument is not a
// positive integer.
var ErrRunNumberFormat = errors.New("run number must be a positive integer")

// CmdRun creates and returns a cobra command for running the analysis of a
// single run.
func CmdRun() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "run [flags] <run number> [output dir]",
			Short: "Run the data-quality analysis for a single run",
			Long: `Run the data-quality analysis for a single run.

The run's NTuple files are resolved from the filelist directory and the
Good Run List supplies the stable-beam time windows and the recorded
luminosity. The external analysis program is invoked once and its yield
file is staged into the output directory (the second argument, or the
configured default).

This is also the entry point of each HTCondor job prepared by "submit".

Example:
  faserdq run 16000 /eos/faser/dq/2024
`,
			Args: cobra.RangeArgs(1, 2),
		}, runFlags, runRun,
	)
}

var runFlags []commandLineFlag

func runRun(ctx *Context, args []string) error {
	run, err := parseRunNumber(args[0])
	if err != nil {
		return err
	}

	outputDir := ctx.Config.Paths.OutputDir
	if len(args) > 1 {
		outputDir = args[1]
	}

	// The toolkit's structured logs share the run log file with the
	// external program's output.
	logDir := filepath.Join(outputDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := fileutil.OpenOrCreateFile(filepath.Join(logDir, fmt.Sprintf("run_%d.log", run)))
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()
	ctx.LogToFile(logFile)

	index, err := ctx.Filelists()
	if err != nil {
		return err
	}
	list, err := ctx.GRL()
	if err != nil {
		return err
	}
	uploader, err := ctx.Uploader()
	if err != nil {
		return err
	}

	logger.Info(ctx, "Starting analysis run", "run", run, "outputDir", outputDir)

	runner := analysis.NewRunner(ctx.Config, index, list, uploader)
	result, err := runner.Run(ctx, run, outputDir)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Analysis run finished", "run", run, "output", result.OutputFile)
	if !ctx.Quiet {
		fmt.Println(result.OutputFile)
	}
	return nil
}

func parseRunNumber(arg string) (int, error) {
	run, err := strconv.Atoi(arg)
	if err != nil || run <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrRunNumberFormat, arg)
	}
	return run, nil
}
