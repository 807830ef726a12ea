package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("DROPWATCH_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultIntervalMS, cfg.IntervalMS)
	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultOrient, cfg.Orientation)
	assert.Equal(t, 2*time.Second, cfg.Interval())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DROPWATCH_HOME", dir)

	body := `
server_url = "http://manager:9000"
interval_ms = 500
mode = "list"
orientation = "TB"

[history]
enabled = true
path = "/tmp/hist.db"

[log]
max_size_mb = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://manager:9000", cfg.ServerURL)
	assert.Equal(t, 500, cfg.IntervalMS)
	assert.Equal(t, "list", cfg.Mode)
	assert.Equal(t, "TB", cfg.Orientation)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/hist.db", cfg.History.Path)
	assert.Equal(t, 5, cfg.Log.MaxSize)
	// Unset paths still get defaults under the config dir.
	assert.Equal(t, filepath.Join(dir, "dropwatch.log"), cfg.Log.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DROPWATCH_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte(`server_url = "http://from-file:9000"`), 0o644))

	t.Setenv("DROPWATCH_SERVER", "http://from-env:9001")
	t.Setenv("DROPWATCH_INTERVAL_MS", "250")
	t.Setenv("DROPWATCH_MODE", "list")
	t.Setenv("DROPWATCH_ORIENTATION", "TB")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9001", cfg.ServerURL)
	assert.Equal(t, 250, cfg.IntervalMS)
	assert.Equal(t, "list", cfg.Mode)
	assert.Equal(t, "TB", cfg.Orientation)
}

func TestEnvIgnoresBadInterval(t *testing.T) {
	t.Setenv("DROPWATCH_HOME", t.TempDir())
	t.Setenv("DROPWATCH_INTERVAL_MS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervalMS, cfg.IntervalMS)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DROPWATCH_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("server_url = [broken"), 0o644))

	_, err := Load()
	require.Error(t, err)
}

func TestDirHonorsDropwatchHome(t *testing.T) {
	t.Setenv("DROPWATCH_HOME", "/custom/home")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", dir)
}
