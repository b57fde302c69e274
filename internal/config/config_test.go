package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/xdg-data/bingers", cfg.DataDir)
	assert.Equal(t, "/tmp/xdg-data/bingers/subscriptions.yaml", cfg.StorePath())
	assert.Equal(t, "https://api.tvmaze.com", cfg.TVMaze.BaseURL)
	assert.Equal(t, 15, cfg.TVMaze.TimeoutSeconds)
	assert.Equal(t, 3, cfg.TVMaze.RetryCount)
	assert.Equal(t, "Running", cfg.Search.Status)
	assert.Equal(t, "English", cfg.Search.Language)
	assert.Equal(t, "0 */6 * * *", cfg.Schedule.CronSpec)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `data_dir: /srv/bingers
tvmaze:
  baseurl: http://localhost:9999
  retry_count: 0
search:
  language: German
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BINGERS_SEARCH_STATUS", "Ended")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/bingers", cfg.DataDir)
	assert.Equal(t, "http://localhost:9999", cfg.TVMaze.BaseURL)
	assert.Equal(t, 0, cfg.TVMaze.RetryCount)
	assert.Equal(t, 15, cfg.TVMaze.TimeoutSeconds)
	assert.Equal(t, "German", cfg.Search.Language)
	assert.Equal(t, "Ended", cfg.Search.Status)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tvmaze: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.DataDir = "/data"
	cfg.TVMaze.BaseURL = "http://example"
	cfg.TVMaze.TimeoutSeconds = 5
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.DataDir = ""
	assert.ErrorContains(t, bad.Validate(), "data_dir")

	bad = cfg
	bad.TVMaze.TimeoutSeconds = 0
	assert.ErrorContains(t, bad.Validate(), "timeout_seconds")

	bad = cfg
	bad.TVMaze.RetryCount = -1
	assert.ErrorContains(t, bad.Validate(), "retry_count")
}
