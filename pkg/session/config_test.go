package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenConfigDirEmpty(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesUserValuesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
scheduler:
  maxConcurrency: 8
  maxRetries: 5
guardrails:
  maxParetoItems: 3
`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Scheduler.MaxConcurrency)
	assert.Equal(t, 5, cfg.Scheduler.MaxRetries)
	assert.Equal(t, 3, cfg.Guardrails.MaxParetoItems)
	// Unset fields retain their defaults.
	assert.Equal(t, 500, cfg.Scheduler.Backoff.BaseMs)
	assert.Equal(t, 350, cfg.Guardrails.MaxStrategicTokens)
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
scheduler:
  maxRetries: -1
`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}
