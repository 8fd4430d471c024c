// Package yield handles run-binned yield histograms. Yield histograms count
// events (or tracks) per run number, so merging across runs concatenates bin
// contents instead of summing them.
package yield

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go-hep.org/x/hep/hbook"
)

var (
	// ErrNoInput is returned when a merge is attempted over no histograms.
	ErrNoInput = errors.New("no input histograms")

	// ErrNonIntegerEdges is returned when a histogram is not binned by
	// integer run numbers.
	ErrNonIntegerEdges = errors.New("bin edges are not integer run numbers")

	// ErrOverlappingBins is returned when two inputs cover the same run bin.
	ErrOverlappingBins = errors.New("histograms cover the same run bin")
)

// Names is the per-run yield histogram set booked for every run.
var Names = []string{
	"Yield",
	"TrkYield",
	"PosTrkYield",
	"NegTrkYield",
	"GoodTrkYield",
	"GoodPosTrkYield",
	"GoodNegTrkYield",
}

// Set is a named collection of yield histograms.
type Set map[string]*hbook.H1D

// Book creates the yield histogram set for a single run: one unit-width bin
// spanning [run, run+1).
func Book(run int) Set {
	set := make(Set, len(Names))
	for _, name := range Names {
		h := hbook.NewH1D(1, float64(run), float64(run+1))
		setName(h, name)
		set[name] = h
	}
	return set
}

func setName(h *hbook.H1D, name string) {
	h.Ann["name"] = name
	h.Ann["path"] = "/" + name
}

// Merge concatenates the sets by histogram name. The combined axis spans
// the full run range with unit-width bins; every source bin keeps its
// position and content.
func Merge(sets []Set) (Set, error) {
	byName := map[string][]*hbook.H1D{}
	for _, set := range sets {
		for name, h := range set {
			byName[name] = append(byName[name], h)
		}
	}
	if len(byName) == 0 {
		return nil, ErrNoInput
	}

	out := make(Set, len(byName))
	for name, hists := range byName {
		merged, err := concat(name, hists)
		if err != nil {
			return nil, err
		}
		out[name] = merged
	}
	return out, nil
}

// concat builds the combined histogram for one name.
func concat(name string, hists []*hbook.H1D) (*hbook.H1D, error) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, h := range hists {
		if !isIntegral(h.XMin()) || !isIntegral(h.XMax()) {
			return nil, fmt.Errorf("histogram %s [%g, %g]: %w", name, h.XMin(), h.XMax(), ErrNonIntegerEdges)
		}
		for _, bin := range h.Binning.Bins {
			if !isIntegral(bin.XMin()) {
				return nil, fmt.Errorf("histogram %s edge %g: %w", name, bin.XMin(), ErrNonIntegerEdges)
			}
		}
		lo = math.Min(lo, h.XMin())
		hi = math.Max(hi, h.XMax())
	}

	nbins := int(math.Round(hi - lo))
	merged := hbook.NewH1D(nbins, lo, hi)
	setName(merged, name)

	covered := make([]bool, nbins)
	for _, h := range hists {
		offset := int(math.Round(h.XMin() - lo))
		for i, bin := range h.Binning.Bins {
			idx := offset + i
			if covered[idx] {
				return nil, fmt.Errorf("histogram %s run bin %d: %w", name, int(lo)+idx, ErrOverlappingBins)
			}
			covered[idx] = true
			if w := bin.SumW(); w != 0 {
				merged.Fill(lo+float64(idx)+0.5, w)
			}
		}
	}
	return merged, nil
}

func isIntegral(x float64) bool {
	return math.Abs(x-math.Round(x)) < 1e-9
}

// sortedNames returns the set's histogram names in sorted order.
func sortedNames(set Set) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
