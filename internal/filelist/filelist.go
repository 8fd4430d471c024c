// Package filelist indexes the plain-text NTuple filelists: one path per
// line, grouped by the run number encoded in the file name.
package filelist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNoFilelists is returned when the filelist directory holds no .txt files.
var ErrNoFilelists = errors.New("no filelist .txt files found")

// Index maps run numbers to their NTuple paths.
type Index struct {
	files map[int][]string
}

// Load reads every .txt file in the directory and groups the listed paths
// by run number.
func Load(dir string) (*Index, error) {
	lists, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFilelists, dir)
	}
	sort.Strings(lists)

	idx := &Index{files: make(map[int][]string)}
	for _, list := range lists {
		if err := idx.loadFile(list); err != nil {
			return nil, err
		}
	}
	for run := range idx.files {
		idx.files[run] = dedupSorted(idx.files[run])
	}
	return idx, nil
}

func (i *Index) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open filelist %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		run, err := RunNumberFromPath(line)
		if err != nil {
			return fmt.Errorf("filelist %s line %d: %w", path, lineNo, err)
		}
		i.files[run] = append(i.files[run], line)
	}
	return scanner.Err()
}

// RunNumberFromPath extracts the run number from an NTuple path. The naming
// convention encodes it as the third dash-separated token of the base name,
// e.g. Faser-Physics-016000-00012-p0012-PHYS.root.
func RunNumberFromPath(path string) (int, error) {
	name := filepath.Base(path)
	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return 0, fmt.Errorf("cannot extract run number from %q", name)
	}
	run, err := strconv.Atoi(parts[2])
	if err != nil || run <= 0 {
		return 0, fmt.Errorf("invalid run number %q in %q", parts[2], name)
	}
	return run, nil
}

// Files returns the paths known for the run, sorted.
func (i *Index) Files(run int) []string {
	return i.files[run]
}

// Runs returns all run numbers in ascending order.
func (i *Index) Runs() []int {
	runs := make([]int, 0, len(i.files))
	for run := range i.files {
		runs = append(runs, run)
	}
	sort.Ints(runs)
	return runs
}

func dedupSorted(paths []string) []string {
	sort.Strings(paths)
	out := paths[:0]
	for i, p := range paths {
		if i == 0 || p != paths[i-1] {
			out = append(out, p)
		}
	}
	return out
}
