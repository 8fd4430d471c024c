package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/config"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/fileutil"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/yield"
)

func TestParseRunNumber(t *testing.T) {
	run, err := parseRunNumber("16000")
	require.NoError(t, err)
	require.Equal(t, 16000, run)

	for _, arg := range []string{"0", "-1", "abc", "16000.5", ""} {
		_, err := parseRunNumber(arg)
		require.ErrorIs(t, err, ErrRunNumberFormat, "arg %q", arg)
	}
}

func TestContextLogToFile(t *testing.T) {
	f, err := fileutil.OpenOrCreateFile(filepath.Join(t.TempDir(), "run_16000.log"))
	require.NoError(t, err)

	ctx := &Context{
		Context: context.Background(),
		Config:  &config.Config{},
		Quiet:   true,
	}
	ctx.LogToFile(f)
	logger.Info(ctx.Context, "staged run output", "run", 16000)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.Contains(t, string(data), "staged run output")
	require.Contains(t, string(data), "run=16000")
}

func TestCmdVersion(t *testing.T) {
	cmd := CmdVersion()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
}

func TestCmdCombine(t *testing.T) {
	dir := t.TempDir()

	first := yield.Book(16000)
	first["Yield"].Fill(16000.5, 12)
	second := yield.Book(16001)
	second["Yield"].Fill(16001.5, 7)

	in1 := filepath.Join(dir, "16000.yoda")
	in2 := filepath.Join(dir, "16001.yoda")
	require.NoError(t, yield.WriteFile(in1, first))
	require.NoError(t, yield.WriteFile(in2, second))

	out := filepath.Join(dir, "combined.yoda")
	cmd := CmdCombine()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"--quiet", "-o", out, in1, in2})
	require.NoError(t, cmd.Execute())

	merged, err := yield.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, merged, len(yield.Names))
	require.InDelta(t, 19, merged["Yield"].Integral(), 1e-9)
}

func TestCmdValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "histograms.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`histograms:
  trackMomentum:
    column: longTracks_p0
    bins: 100
    low: 0
    high: 2000
    scale: 0.001
`), 0o644))

	cmd := CmdValidate()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"--quiet", file})
	require.NoError(t, cmd.Execute())
}

func TestCmdRuns(t *testing.T) {
	listDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(listDir, "Faser-Physics-016000-filelist.txt"),
		[]byte("/eos/ntuples/Faser-Physics-016000-00001.root\n"),
		0o644,
	))

	grlDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(grlDir, "grl.json"),
		[]byte(`{"16000": {"stable_list": [{"start_utime": 100, "stop_utime": 200}], "excluded_list": []}}`),
		0o644,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(grlDir, "lumi.csv"),
		[]byte("run,start,stop,lumi_rec\n16000,a,b,1230\n"),
		0o644,
	))

	t.Setenv("FASERDQ_PATHS_FILELISTDIR", listDir)
	t.Setenv("FASERDQ_PATHS_GRLDIR", grlDir)

	cmd := CmdRuns()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"--quiet"})
	require.NoError(t, cmd.Execute())
}
