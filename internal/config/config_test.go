package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TASKPIPE_HUB_ENDPOINT", "TASKPIPE_CACHE_DIR", "HF_TOKEN", "TASKPIPE_OFFLINE", "LOG_LEVEL", "TASKPIPE_ACCEL_CONFIG"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "https://huggingface.co", s.HubEndpoint)
	assert.False(t, s.Offline)
	assert.Equal(t, slog.LevelInfo, s.Level())
	assert.NotEmpty(t, s.CacheDir)

	acc, err := s.Accelerator()
	require.NoError(t, err)
	assert.Equal(t, accel.Default(), acc)
}

func TestLoad_DotenvAndEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("TASKPIPE_CACHE_DIR="+dir+"\nLOG_LEVEL=debug\nTASKPIPE_OFFLINE=true\nHF_TOKEN=from-file\n"), 0o600))

	// The environment wins over the dotenv file.
	t.Setenv("HF_TOKEN", "from-env")

	s, err := Load(dotenv)
	require.NoError(t, err)
	assert.Equal(t, dir, s.CacheDir)
	assert.Equal(t, "from-env", s.HubToken)
	assert.True(t, s.Offline)
	assert.Equal(t, slog.LevelDebug, s.Level())
	assert.Equal(t, filepath.Join(dir, "manifest"), s.ManifestDir())

	opts := s.HubOptions(nil)
	assert.Equal(t, filepath.Join(dir, "hub"), opts.CacheDir)
	assert.True(t, opts.Offline)
}

func TestSettings_Level(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Settings{LogLevel: in}.Level(), in)
	}
}

func TestSettings_Accelerator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: webgpu\nthreads: 4\n"), 0o600))

	acc, err := Settings{AccelConfig: path}.Accelerator()
	require.NoError(t, err)
	assert.Equal(t, accel.WebGPU, acc.Provider)
	assert.Equal(t, 4, acc.Threads)

	_, err = Settings{AccelConfig: filepath.Join(t.TempDir(), "missing.yaml")}.Accelerator()
	assert.Error(t, err)
}
