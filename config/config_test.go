package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "TMS99105", cfg.Machine.Platform)
	assert.Equal(t, 10, cfg.Machine.DefaultCheckpoint)
	assert.Equal(t, 1000000, cfg.Execution.MaxSteps)
	assert.Equal(t, ">0100", cfg.Execution.DefaultEntry)
	assert.False(t, cfg.Execution.EnableStats)
	assert.Equal(t, "hex", cfg.Display.NumberFormat)
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveToThenLoadFromRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxSteps = 42
	cfg.Debugger.HistorySize = 7
	cfg.Display.NumberFormat = "dec"

	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Execution.MaxSteps)
	assert.Equal(t, 7, loaded.Debugger.HistorySize)
	assert.Equal(t, "dec", loaded.Display.NumberFormat)
}

func TestSaveToCreatesMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.SaveTo(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
