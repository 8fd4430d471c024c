// Package submit generates the batch-system artifacts: the per-job
// arguments file and the HTCondor submit description. Queueing, retries,
// and failure handling belong to the external scheduler.
package submit

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// JobArg is one job instantiation: a run number and the directory its
// output file is written to.
type JobArg struct {
	Run       int
	OutputDir string
}

// WriteArgsFile writes the arguments file consumed by the scheduler's
// queue directive: one "run outputDir" pair per line.
func WriteArgsFile(path string, jobs []JobArg) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create args file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, job := range jobs {
		if job.Run <= 0 {
			_ = f.Close()
			return fmt.Errorf("invalid run number %d", job.Run)
		}
		fmt.Fprintf(w, "%d %s\n", job.Run, job.OutputDir)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadArgsFile parses an arguments file. Blank lines and "#" comments are
// skipped.
func ReadArgsFile(path string) ([]JobArg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open args file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var jobs []JobArg
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("args file %s line %d: expected \"run outputDir\", got %q", path, lineNo, line)
		}
		run, err := strconv.Atoi(fields[0])
		if err != nil || run <= 0 {
			return nil, fmt.Errorf("args file %s line %d: invalid run number %q", path, lineNo, fields[0])
		}
		jobs = append(jobs, JobArg{Run: run, OutputDir: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}
