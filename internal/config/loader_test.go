package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.Load(config.WithConfigFile(writeConfig(t, "{}\n")))
		require.NoError(t, err)

		require.Equal(t, "text", cfg.Global.LogFormat)
		require.Equal(t, "nt", cfg.Analysis.Tree)
		require.Equal(t, "faser_dq_rdf", cfg.Analysis.Executable)
		// LogDir defaults under the output directory.
		require.Equal(t, filepath.Join(cfg.Paths.OutputDir, "logs"), cfg.Paths.LogDir)
		require.False(t, cfg.Storage.UploadEnabled())
	})
	t.Run("ConfigFile", func(t *testing.T) {
		file := writeConfig(t, `
debug: true
logFormat: json
paths:
  filelistDir: /data/faser/filelists
  grlDir: /cvmfs/faser.cern.ch/repo/sw/runlist/v8
analysis:
  executable: /opt/faser/bin/faser_dq_rdf
  tree: nt
storage:
  endpoint: eos.cern.ch:9000
  bucket: faser-dq
`)
		cfg, err := config.Load(config.WithConfigFile(file))
		require.NoError(t, err)

		require.True(t, cfg.Global.Debug)
		require.Equal(t, "json", cfg.Global.LogFormat)
		require.Equal(t, "/data/faser/filelists", cfg.Paths.FilelistDir)
		require.Equal(t, "/opt/faser/bin/faser_dq_rdf", cfg.Analysis.Executable)
		require.True(t, cfg.Storage.UploadEnabled())
		require.Equal(t, file, cfg.Global.ConfigPath)
	})
	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("FASERDQ_ANALYSIS_TREE", "nt2024")
		cfg, err := config.Load(config.WithConfigFile(writeConfig(t, "{}\n")))
		require.NoError(t, err)
		require.Equal(t, "nt2024", cfg.Analysis.Tree)
	})
	t.Run("LegacyStorageEndpointEnv", func(t *testing.T) {
		t.Setenv("STORAGE_ENDPOINT", "eos.cern.ch:9000")
		cfg, err := config.Load(config.WithConfigFile(writeConfig(t, "{}\n")))
		require.NoError(t, err)

		require.Equal(t, "eos.cern.ch:9000", cfg.Storage.Endpoint)
		// Endpoint without a bucket warns and disables uploads.
		require.NotEmpty(t, cfg.Warnings)
		require.False(t, cfg.Storage.UploadEnabled())
	})
	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := config.Load(config.WithConfigFile(filepath.Join(t.TempDir(), "none.yaml")))
		require.Error(t, err)
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}
