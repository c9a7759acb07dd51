package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("GRAPHSTORE_RUNTIME_LIMIT", "5")
	t.Setenv("GRAPHSTORE_WARM_LIMIT", "50")
	t.Setenv("GRAPHSTORE_AUTO_PRUNE_INTERVAL", "10m")

	cfg := LoadFromEnv()
	assert.Equal(t, 5, cfg.RuntimeLimit)
	assert.Equal(t, 50, cfg.WarmLimit)
	assert.Equal(t, 10*time.Minute, cfg.AutoPruneInterval)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("GRAPHSTORE_RUNTIME_LIMIT", "not-a-number")

	cfg := LoadFromEnv()
	assert.Equal(t, DefaultConfig().RuntimeLimit, cfg.RuntimeLimit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime_limit: 42\nwarm_limit: 100\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.RuntimeLimit)
	assert.Equal(t, 100, cfg.WarmLimit)
	assert.Equal(t, DefaultConfig().AutoPruneInterval, cfg.AutoPruneInterval)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/graphstore.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsInvertedLimits(t *testing.T) {
	cfg := &Config{RuntimeLimit: 100, WarmLimit: 10}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoPruneInterval = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidateAllowsDisabledLimits(t *testing.T) {
	cfg := &Config{RuntimeLimit: -1, WarmLimit: -1}
	assert.NoError(t, cfg.Validate())
}
