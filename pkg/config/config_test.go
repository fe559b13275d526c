package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isomatch.yaml")
	content := `
server:
  listen_addr: ":6000"
  rate_limit: true
storage:
  db_path: /tmp/jogja_db
  use_h3_index: true
matching:
  search_radius: 35.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.ListenAddr)
	assert.True(t, cfg.Server.UseRateLimit)
	assert.Equal(t, 10.0, cfg.Server.RateLimit)
	assert.Equal(t, "/tmp/jogja_db", cfg.Storage.DBPath)
	assert.True(t, cfg.Storage.UseH3Index)
	assert.Equal(t, 35.5, cfg.Matching.SearchRadius)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ISOMATCH_SERVER_LISTEN_ADDR", ":7000")
	t.Setenv("ISOMATCH_MATCHING_NUM_WORKERS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.ListenAddr)
	assert.Equal(t, 3, cfg.Matching.NumWorkers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matching.SearchRadius = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Server.UseRateLimit = true
	cfg.Server.RateBurst = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
