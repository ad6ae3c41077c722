package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dwfx", cfg.InputDir)
	assert.Equal(t, "pdf", cfg.OutputDir)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.False(t, cfg.Overwrite)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "xpstopdf", cfg.Converter.Binary)
	assert.Len(t, cfg.Converter.FallbackPaths, 2)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.PollInterval.Std())
	assert.Equal(t, 40, cfg.Watch.MaxPolls)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, 10*time.Second, cfg.Web.ShutdownTimeout.Std())
	assert.Equal(t, int64(100), cfg.Web.MaxUploadMB)
	assert.False(t, cfg.Mirror.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: incoming
output_dir: rendered
workers: 8
watch:
  poll_interval: 100ms
  max_polls: 20
web:
  port: 9090
  shutdown_timeout: 5s
  max_upload_mb: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "incoming", cfg.InputDir)
	assert.Equal(t, "rendered", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.PollInterval.Std())
	assert.Equal(t, 20, cfg.Watch.MaxPolls)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 5*time.Second, cfg.Web.ShutdownTimeout.Std())
	assert.Equal(t, int64(10), cfg.Web.MaxUploadMB)

	// unset values still pick up defaults
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch:\n  poll_interval: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestMirrorValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mirror:\n  enabled: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mirror.endpoint")
}
