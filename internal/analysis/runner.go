// Package analysis runs the data-quality analysis for a single run: it
// stages the defines header, resolves the run's inputs and Good Run List
// cuts, invokes the external analysis program, and stages the output file.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/config"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/filelist"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/fileutil"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/grl"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

var (
	// ErrInvalidRun is returned for non-positive run numbers.
	ErrInvalidRun = errors.New("run number must be positive")

	// ErrNoInputFiles is returned when no NTuple is known for the run.
	ErrNoInputFiles = errors.New("no input files for run")

	// ErrOutputMissing is returned when the analysis program exits
	// successfully but produced no output file.
	ErrOutputMissing = errors.New("analysis produced no output file")
)

// Uploader sends a run output file to remote storage.
type Uploader interface {
	UploadRunOutput(ctx context.Context, run int, source string) (string, error)
}

// Runner executes the analysis for single runs.
type Runner struct {
	cfg      *config.Config
	index    *filelist.Index
	grl      *grl.List
	uploader Uploader // nil disables uploads
}

// NewRunner creates a Runner over the given inputs.
func NewRunner(cfg *config.Config, index *filelist.Index, list *grl.List, uploader Uploader) *Runner {
	return &Runner{cfg: cfg, index: index, grl: list, uploader: uploader}
}

// Result describes one completed run.
type Result struct {
	Run        int
	OutputFile string
	Lumi       float64 // fb^-1, zero when unknown
	URI        string  // remote URI when uploaded
}

// Run executes the analysis for one run and stages its output into
// outputDir. Failures of the external program propagate as its exit
// status; there is no local retry.
func (r *Runner) Run(ctx context.Context, run int, outputDir string) (*Result, error) {
	if run <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRun, run)
	}

	files := r.index.Files(run)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w %d", ErrNoInputFiles, run)
	}
	logger.Info(ctx, "Resolved input files", "run", run, "files", len(files))

	lumi, haveLumi := r.grl.Lumi(run)
	if haveLumi {
		logger.Info(ctx, "Run luminosity", "run", run, "lumi_fb", lumi)
	} else {
		logger.Warn(ctx, "No luminosity recorded for run; histograms are unweighted", "run", run)
	}

	logDir := filepath.Join(outputDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workDir, err := os.MkdirTemp("", "faserdq-run-")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	if err := r.stageDefines(ctx, workDir); err != nil {
		return nil, err
	}

	outputFile := filepath.Join(workDir, fmt.Sprintf("%d.yoda", run))
	args := r.buildArgs(run, outputFile, lumi, haveLumi, files)

	logFile, err := fileutil.OpenOrCreateFile(filepath.Join(logDir, fmt.Sprintf("run_%d.log", run)))
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()

	cmd := exec.CommandContext(ctx, r.cfg.Analysis.Executable, args...)
	cmd.Dir = workDir
	cmd.Stdout = io.MultiWriter(os.Stdout, logFile)
	cmd.Stderr = io.MultiWriter(os.Stderr, logFile)
	cmd.Env, err = r.buildEnv(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Invoking analysis program",
		"run", run,
		"executable", r.cfg.Analysis.Executable,
		"workDir", workDir,
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("analysis program failed for run %d: %w", run, err)
	}

	if !fileutil.FileExists(outputFile) {
		return nil, fmt.Errorf("%w: expected %s", ErrOutputMissing, outputFile)
	}

	staged := filepath.Join(outputDir, filepath.Base(outputFile))
	if err := stageFile(outputFile, staged); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Staged run output", "run", run, "file", staged)

	// Some analysis builds also emit a ROOT companion file.
	if root := filepath.Join(workDir, fmt.Sprintf("%d.root", run)); fileutil.FileExists(root) {
		if err := stageFile(root, filepath.Join(outputDir, filepath.Base(root))); err != nil {
			return nil, err
		}
	}

	result := &Result{Run: run, OutputFile: staged, Lumi: lumi}
	if r.uploader != nil {
		uri, err := r.uploader.UploadRunOutput(ctx, run, staged)
		if err != nil {
			return nil, err
		}
		result.URI = uri
	}
	return result, nil
}

// buildArgs assembles the external program's argument list: the run number
// first, then flags, then the input files.
func (r *Runner) buildArgs(run int, outputFile string, lumi float64, haveLumi bool, files []string) []string {
	args := []string{
		strconv.Itoa(run),
		"--tree", r.cfg.Analysis.Tree,
		"--output", outputFile,
	}
	if haveLumi {
		args = append(args, "--lumi", strconv.FormatFloat(lumi, 'g', -1, 64))
	}
	if cut := r.grl.GoodTimesCut(); cut != "" {
		args = append(args, "--good-times", cut)
	}
	if cut := r.grl.ExcludedTimesCut(); cut != "" {
		args = append(args, "--excluded-times", cut)
	}
	args = append(args, r.cfg.Analysis.ExtraArgs...)
	return append(args, files...)
}

// buildEnv returns the process environment, extended with the configured
// dotenv file when present.
func (r *Runner) buildEnv(ctx context.Context) ([]string, error) {
	env := os.Environ()
	if r.cfg.Analysis.EnvFile == "" {
		return env, nil
	}
	extra, err := godotenv.Read(r.cfg.Analysis.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", r.cfg.Analysis.EnvFile, err)
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	logger.Debug(ctx, "Loaded environment file", "file", r.cfg.Analysis.EnvFile, "vars", len(extra))
	return env, nil
}

// stageDefines copies the C++ defines header next to the program, matching
// the wrapper-script behaviour the batch jobs rely on.
func (r *Runner) stageDefines(ctx context.Context, workDir string) error {
	defines := r.cfg.Paths.DefinesFile
	if defines == "" {
		return nil
	}
	if !fileutil.FileExists(defines) {
		logger.Warn(ctx, "Defines header not found; continuing without it", "file", defines)
		return nil
	}
	return fileutil.CopyFile(defines, filepath.Join(workDir, filepath.Base(defines)))
}

// stageFile moves src to dst, falling back to copy when rename crosses
// filesystems.
func stageFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to stage output: %w", err)
	}
	return os.Remove(src)
}
