package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "testdata/wines.csv", cfg.Data.File)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ClusteringConfig{MinK: 2, MaxK: 10, FinalK: 3, Seed: 42, MaxIterations: 300, NInit: 10}, cfg.Clustering)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)

	core := cfg.Core()
	assert.Equal(t, int64(42), core.Seed)
	assert.Equal(t, 10, core.NInit)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("WINECLUSTER_DATA_FILE", "/data/vinhos.xlsx")
	t.Setenv("WINECLUSTER_K_MIN", "3")
	t.Setenv("WINECLUSTER_K_MAX", "6")
	t.Setenv("WINECLUSTER_K_FINAL", "4")
	t.Setenv("WINECLUSTER_SEED", "7")
	t.Setenv("WINECLUSTER_WORKERS", "2")
	t.Setenv("WINECLUSTER_LOG_LEVEL", "debug")
	t.Setenv("WINECLUSTER_HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/data/vinhos.xlsx", cfg.Data.File)
	assert.Equal(t, 3, cfg.Clustering.MinK)
	assert.Equal(t, 6, cfg.Clustering.MaxK)
	assert.Equal(t, 4, cfg.Clustering.FinalK)
	assert.Equal(t, int64(7), cfg.Core().Seed)
	assert.Equal(t, 2, cfg.Core().Workers)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"WINECLUSTER_K_MIN", "two", "WINECLUSTER_K_MIN"},
		{"WINECLUSTER_K_MIN", "0", "WINECLUSTER_K_MIN must be >= 1"},
		{"WINECLUSTER_K_MAX", "1", "below WINECLUSTER_K_MIN"},
		{"WINECLUSTER_K_FINAL", "-1", "WINECLUSTER_K_FINAL"},
		{"WINECLUSTER_WORKERS", "-2", "WINECLUSTER_WORKERS"},
		{"WINECLUSTER_N_INIT", "0", "WINECLUSTER_N_INIT"},
		{"WINECLUSTER_LOG_LEVEL", "loud", "WINECLUSTER_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("WINECLUSTER_K_FINAL=5\nWINECLUSTER_SEED=99\n"), 0o600))
	t.Chdir(dir)
	// Variables already in the environment win over the file.
	t.Setenv("WINECLUSTER_SEED", "11")
	t.Cleanup(func() { os.Unsetenv("WINECLUSTER_K_FINAL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Clustering.FinalK)
	assert.Equal(t, int64(11), cfg.Clustering.Seed)
}

func TestLoad_NoDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Clustering.FinalK)
}
