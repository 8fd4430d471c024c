package submit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

// Batch is one prepared submission: the arguments file, the submit
// description, and a batch identifier used in artifact names.
type Batch struct {
	ID          string
	Jobs        []JobArg
	Description Description

	dir string // directory holding the generated artifacts
}

// NewBatch prepares a submission for the given jobs. Artifacts are written
// by WriteArtifacts into dir.
func NewBatch(dir, executable, logDir string, jobs []JobArg) (*Batch, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("batch requires at least one job")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	b := &Batch{
		ID:   id.String(),
		Jobs: jobs,
		dir:  dir,
	}
	b.Description = DefaultDescription(executable, logDir, b.ArgsFilePath())
	return b, nil
}

// ArgsFilePath returns the path of the batch arguments file.
func (b *Batch) ArgsFilePath() string {
	return filepath.Join(b.dir, fmt.Sprintf("args_%s.txt", b.ID))
}

// SubmitFilePath returns the path of the submit description file.
func (b *Batch) SubmitFilePath() string {
	return filepath.Join(b.dir, fmt.Sprintf("submit_%s.sub", b.ID))
}

// WriteArtifacts writes the arguments file and the submit description.
func (b *Batch) WriteArtifacts() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create submit dir %s: %w", b.dir, err)
	}
	if err := WriteArgsFile(b.ArgsFilePath(), b.Jobs); err != nil {
		return err
	}
	rendered, err := b.Description.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.SubmitFilePath(), []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write submit file: %w", err)
	}
	return nil
}

// Submit hands the batch to condor_submit. The scheduler owns everything
// from here: queueing, retries, and failure accounting.
func (b *Batch) Submit(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "condor_submit", b.SubmitFilePath())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Info(ctx, "Submitting batch", "batch", b.ID, "jobs", len(b.Jobs))
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("condor_submit failed: %w: %s", err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Summary renders a table of the queued jobs.
func (b *Batch) Summary() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Output Directory"})
	for _, job := range b.Jobs {
		t.AppendRow(table.Row{job.Run, job.OutputDir})
	}
	t.AppendFooter(table.Row{"Jobs", len(b.Jobs)})
	return t.Render()
}
