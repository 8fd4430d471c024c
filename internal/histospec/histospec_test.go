package histospec_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/histospec"
	"github.com/stretchr/testify/require"
)

const validConfig = `
histograms:
  Track_Chi2:
    label: "Track #chi^{2}"
    bins: 50
    low: 0
    high: 50
  Track_pz_charge0:
    column: Track_pz_charge0
    bins: 100
    low: -500
    high: 500
    scale: 1000
  VetoNu0_charge:
    bins: 50
    low: 0.01
    high: 300.0
    cut:
      expr: "(TAP & 4) != 0"
      label: "Timing Trigger"
`

func TestLoadYAML(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		cfg, err := histospec.LoadYAML(ctx, []byte(validConfig))
		require.NoError(t, err)
		require.Equal(t, []string{"Track_Chi2", "Track_pz_charge0", "VetoNu0_charge"}, cfg.Names())

		h, ok := cfg.Lookup("Track_Chi2")
		require.True(t, ok)
		// Column and scale default.
		require.Equal(t, "Track_Chi2", h.Column)
		require.Equal(t, "Track #chi^{2}", h.Label)
		require.Equal(t, 1.0, h.Scale)
		require.Nil(t, h.Cut)

		h, ok = cfg.Lookup("Track_pz_charge0")
		require.True(t, ok)
		require.Equal(t, 1000.0, h.Scale)

		h, ok = cfg.Lookup("VetoNu0_charge")
		require.True(t, ok)
		require.NotNil(t, h.Cut)
		require.Equal(t, "(TAP & 4) != 0", h.Cut.Expr)
		require.Equal(t, "Timing Trigger", h.Cut.Label)
	})
	t.Run("Empty", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte("histograms: {}\n"))
		require.ErrorIs(t, err, histospec.ErrEmptyConfig)
	})
	t.Run("ZeroBins", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 0
    low: 0
    high: 1
`))
		require.ErrorIs(t, err, histospec.ErrInvalidBins)
	})
	t.Run("InvertedRange", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 10
    low: 5
    high: 5
`))
		require.ErrorIs(t, err, histospec.ErrInvalidRange)
	})
	t.Run("ZeroScale", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 10
    low: 0
    high: 1
    scale: 0
`))
		require.ErrorIs(t, err, histospec.ErrInvalidScale)
	})
	t.Run("NegativeScale", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 10
    low: 0
    high: 1
    scale: -0.001
`))
		require.ErrorIs(t, err, histospec.ErrInvalidScale)
	})
	t.Run("CutWithoutExpr", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 10
    low: 0
    high: 1
    cut:
      label: "no expression"
`))
		require.ErrorIs(t, err, histospec.ErrMissingCutExpr)
	})
	t.Run("DuplicateNames", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Twice:
    bins: 10
    low: 0
    high: 1
  Twice:
    bins: 20
    low: 0
    high: 2
`))
		require.Error(t, err)
	})
	t.Run("UnknownField", func(t *testing.T) {
		_, err := histospec.LoadYAML(ctx, []byte(`
histograms:
  Bad:
    bins: 10
    low: 0
    high: 1
    wdith: 3
`))
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("FromFile", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "histograms.yaml")
		require.NoError(t, os.WriteFile(file, []byte(validConfig), 0o644))

		cfg, err := histospec.Load(ctx, file)
		require.NoError(t, err)
		require.Len(t, cfg.Histograms, 3)
	})
	t.Run("WithBaseConfig", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "base.yaml")
		file := filepath.Join(dir, "histograms.yaml")
		require.NoError(t, os.WriteFile(base, []byte(`
histograms:
  Yield:
    bins: 1
    low: 16000
    high: 16001
`), 0o644))
		require.NoError(t, os.WriteFile(file, []byte(validConfig), 0o644))

		cfg, err := histospec.Load(ctx, file, histospec.WithBaseConfig(base))
		require.NoError(t, err)
		require.Len(t, cfg.Histograms, 4)
		_, ok := cfg.Lookup("Yield")
		require.True(t, ok)
	})
	t.Run("MissingFile", func(t *testing.T) {
		_, err := histospec.Load(ctx, filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
	})
}
