// Package grl reads Good Run List directories: CSV files carrying the
// recorded luminosity per run and JSON files carrying the stable and
// excluded time windows of each run. The windows are rendered into filter
// expressions understood by the external dataframe engine.
package grl

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNoCSVFiles is returned when the GRL directory holds no luminosity CSV.
	ErrNoCSVFiles = errors.New("no GRL .csv files found")

	// ErrNoJSONFiles is returned when the GRL directory holds no run-list JSON.
	ErrNoJSONFiles = errors.New("no GRL .json files found")
)

// Window is a half-open-in-neither-end time window in unix seconds.
type Window struct {
	Start int64 `json:"start_utime"`
	Stop  int64 `json:"stop_utime"`
}

// runEntry mirrors the per-run object of the GRL JSON files. Excluded is a
// pointer so an explicitly empty list can be told apart from an absent key.
type runEntry struct {
	Stable   []Window  `json:"stable_list"`
	Excluded *[]Window `json:"excluded_list"`
}

// List is the parsed content of a GRL directory.
type List struct {
	stable   map[int][]Window
	excluded map[int][]Window
	lumi     map[int]float64 // fb^-1
}

// Load parses every .json and .csv file in the given directory.
func Load(dir string) (*List, error) {
	list := &List{
		stable:   make(map[int][]Window),
		excluded: make(map[int][]Window),
		lumi:     make(map[int]float64),
	}
	if err := list.loadWindows(dir); err != nil {
		return nil, err
	}
	if err := list.loadLumi(dir); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *List) loadWindows(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoJSONFiles, dir)
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read GRL file %s: %w", file, err)
		}
		entries := map[string]runEntry{}
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse GRL file %s: %w", file, err)
		}
		for key, entry := range entries {
			run, err := strconv.Atoi(key)
			if err != nil || run <= 0 {
				return fmt.Errorf("invalid run number %q in GRL file %s", key, file)
			}
			// Later files override earlier entries for the same run.
			// An absent excluded_list keeps earlier exclusions.
			l.stable[run] = entry.Stable
			if entry.Excluded != nil {
				l.excluded[run] = *entry.Excluded
			}
		}
	}
	return nil
}

func (l *List) loadLumi(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoCSVFiles, dir)
	}
	sort.Strings(files)

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open lumi file %s: %w", file, err)
		}
		reader := csv.NewReader(f)
		reader.Comment = '#'
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse lumi file %s: %w", file, err)
		}
		for i, record := range records {
			if i == 0 {
				// Header row.
				continue
			}
			if len(record) < 4 {
				return fmt.Errorf("lumi file %s line %d: expected at least 4 columns, got %d", file, i+1, len(record))
			}
			run, err := strconv.Atoi(strings.TrimSpace(record[0]))
			if err != nil || run <= 0 {
				return fmt.Errorf("lumi file %s line %d: invalid run number %q", file, i+1, record[0])
			}
			lumiRec, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
			if err != nil {
				return fmt.Errorf("lumi file %s line %d: invalid luminosity %q", file, i+1, record[3])
			}
			// pb^-1 -> fb^-1
			l.lumi[run] = lumiRec / 1000
		}
	}
	return nil
}

// Lumi returns the recorded luminosity of the run in fb^-1.
func (l *List) Lumi(run int) (float64, bool) {
	v, ok := l.lumi[run]
	return v, ok
}

// Runs returns the sorted run numbers that have stable windows.
func (l *List) Runs() []int {
	runs := make([]int, 0, len(l.stable))
	for run := range l.stable {
		runs = append(runs, run)
	}
	sort.Ints(runs)
	return runs
}

// StableWindows returns the stable windows of the run.
func (l *List) StableWindows(run int) []Window {
	return l.stable[run]
}

// ExcludedWindows returns the excluded windows of the run.
func (l *List) ExcludedWindows(run int) []Window {
	return l.excluded[run]
}

// GoodTimesCut renders a filter expression selecting events inside any
// stable window of their run. Empty when no windows are known.
func (l *List) GoodTimesCut() string {
	return renderCut(l.stable, l.runsOf(l.stable))
}

// ExcludedTimesCut renders a filter expression matching events inside any
// excluded window; callers negate it. Empty when no runs have exclusions.
func (l *List) ExcludedTimesCut() string {
	return renderCut(l.excluded, l.runsOf(l.excluded))
}

func (l *List) runsOf(windows map[int][]Window) []int {
	runs := make([]int, 0, len(windows))
	for run := range windows {
		runs = append(runs, run)
	}
	sort.Ints(runs)
	return runs
}

// renderCut joins per-window terms with "||". Runs are visited in sorted
// order so the expression is deterministic.
func renderCut(windows map[int][]Window, runs []int) string {
	var terms []string
	for _, run := range runs {
		for _, w := range windows[run] {
			terms = append(terms, fmt.Sprintf(
				"((eventTime >= %d) && (eventTime <= %d) && (run == %d))", w.Start, w.Stop, run))
		}
	}
	return strings.Join(terms, " || ")
}
