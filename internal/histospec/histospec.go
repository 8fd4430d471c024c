// Package histospec loads the YAML histogram-booking configuration consumed
// by the analysis program: named one-dimensional histogram specifications
// with binning, unit scaling, and optional pre-histogramming cuts.
package histospec

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyConfig    = errors.New("configuration contains no histograms")
	ErrInvalidBins    = errors.New("bin count must be positive")
	ErrInvalidRange   = errors.New("lower bound must be less than upper bound")
	ErrInvalidScale   = errors.New("unit scale must be positive")
	ErrMissingCutExpr = errors.New("cut requires an expression")
)

// Cut is an optional pre-histogramming filter.
type Cut struct {
	Expr  string
	Label string
}

// Histogram is one booked histogram specification.
type Histogram struct {
	Name   string
	Column string  // source column; defaults to Name
	Label  string  // display label; defaults to Name
	Bins   int
	Low    float64
	High   float64
	Scale  float64 // unit scale factor applied to the column, defaults to 1
	Cut    *Cut
}

// Config is an unordered collection of histogram specifications keyed by
// unique name.
type Config struct {
	Histograms map[string]Histogram
}

// Names returns the histogram names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Histograms))
	for name := range c.Histograms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named histogram specification.
func (c *Config) Lookup(name string) (Histogram, bool) {
	h, ok := c.Histograms[name]
	return h, ok
}

// validate applies defaults and checks every histogram specification.
func (c *Config) validate() error {
	if len(c.Histograms) == 0 {
		return ErrEmptyConfig
	}
	for name, h := range c.Histograms {
		h.Name = name
		if h.Column == "" {
			h.Column = name
		}
		if h.Label == "" {
			h.Label = name
		}
		if h.Scale == 0 {
			h.Scale = 1
		}
		if h.Bins <= 0 {
			return fmt.Errorf("histogram %s: %w (got %d)", name, ErrInvalidBins, h.Bins)
		}
		if h.Low >= h.High {
			return fmt.Errorf("histogram %s: %w (got [%g, %g])", name, ErrInvalidRange, h.Low, h.High)
		}
		if h.Scale < 0 {
			return fmt.Errorf("histogram %s: %w (got %g)", name, ErrInvalidScale, h.Scale)
		}
		if h.Cut != nil && h.Cut.Expr == "" {
			return fmt.Errorf("histogram %s: %w", name, ErrMissingCutExpr)
		}
		c.Histograms[name] = h
	}
	return nil
}
