package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/submit"
)

// ErrNoRunsToSubmit is returned when no runs qualify for submission.
var ErrNoRunsToSubmit = errors.New("no runs to submit")

// CmdSubmit creates and returns a cobra command for submitting analysis
// jobs to HTCondor.
func CmdSubmit() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "submit [flags] [run number ...]",
			Short: "Submit one analysis job per run to HTCondor",
			Long: `Submit one analysis job per run to HTCondor.

Without arguments every run that appears in both the Good Run List and
the filelist directory is queued. With run number arguments only those
runs are queued. Each job re-invokes this binary's "run" command on the
worker node; retries and failure accounting are left to the scheduler.

The generated submit description and arguments file are written to the
configured log directory. With --dry-run the artifacts are written but
condor_submit is not called.

Example:
  faserdq submit --dry-run
  faserdq submit 16000 16001 -o /eos/faser/dq/2024
`,
		}, submitFlags, runSubmit,
	)
}

var submitFlags = []commandLineFlag{outputDirFlag, dryRunFlag}

func runSubmit(ctx *Context, args []string) error {
	runs, err := resolveSubmitRuns(ctx, args)
	if err != nil {
		return err
	}

	outputDir, err := ctx.StringParam("output-dir")
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = ctx.Config.Paths.OutputDir
	}

	jobs := make([]submit.JobArg, 0, len(runs))
	for _, run := range runs {
		jobs = append(jobs, submit.JobArg{Run: run, OutputDir: outputDir})
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own executable: %w", err)
	}

	batch, err := submit.NewBatch(ctx.Config.Paths.LogDir, executable, ctx.Config.Paths.LogDir, jobs)
	if err != nil {
		return err
	}
	if err := batch.WriteArtifacts(); err != nil {
		return err
	}
	logger.Info(ctx, "Prepared submission",
		"batch", batch.ID,
		"jobs", len(jobs),
		"submitFile", batch.SubmitFilePath(),
	)

	if !ctx.Quiet {
		fmt.Println(batch.Summary())
	}

	if dryRun, _ := ctx.Command.Flags().GetBool("dry-run"); dryRun {
		logger.Info(ctx, "Dry run; skipping condor_submit", "submitFile", batch.SubmitFilePath())
		return nil
	}

	out, err := batch.Submit(ctx)
	if err != nil {
		return err
	}
	if !ctx.Quiet && out != "" {
		fmt.Println(out)
	}
	return nil
}

// resolveSubmitRuns returns the runs to queue: the explicit arguments, or
// every run present in both the GRL and the filelist directory.
func resolveSubmitRuns(ctx *Context, args []string) ([]int, error) {
	index, err := ctx.Filelists()
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		runs := make([]int, 0, len(args))
		for _, arg := range args {
			run, err := parseRunNumber(arg)
			if err != nil {
				return nil, err
			}
			if len(index.Files(run)) == 0 {
				return nil, fmt.Errorf("no input files for run %d", run)
			}
			runs = append(runs, run)
		}
		return runs, nil
	}

	list, err := ctx.GRL()
	if err != nil {
		return nil, err
	}

	var runs []int
	for _, run := range list.Runs() {
		if len(index.Files(run)) == 0 {
			logger.Warn(ctx, "Run is in the GRL but has no filelist; skipping", "run", run)
			continue
		}
		runs = append(runs, run)
	}
	if len(runs) == 0 {
		return nil, ErrNoRunsToSubmit
	}
	return runs, nil
}
