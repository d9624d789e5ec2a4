package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://earthengine.googleapis.com", cfg.Backend.URL)
	assert.Equal(t, "transmitterReceiverPolarisation", cfg.Backend.FilterProperty)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "gee_subset", cfg.PostGIS.Table)
	assert.Empty(t, cfg.PostGIS.DSN)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gee-subset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  url: http://localhost:9000
  timeout: 90s
  filter_property: bands
log:
  level: debug
  format: json
`), 0o644))
	t.Setenv("GEE_SUBSET_BACKEND_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Backend.URL)
	assert.Equal(t, 90*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "bands", cfg.Backend.FilterProperty)
	assert.Equal(t, "from-env", cfg.Backend.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}

	logger := cfg.NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown", "site", "a")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	cfg.NewLogger(&buf, true).Debug("debug on")
	assert.Contains(t, buf.String(), "debug on")
}
