package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "captured", cfg.Paths.Captured)
	assert.Equal(t, "templates", cfg.Paths.Templates)
	assert.Equal(t, 10*time.Second, cfg.Compose.DecodeTimeout)
	assert.Equal(t, 90, cfg.Compose.JPEGQuality)
	assert.Equal(t, "classic", cfg.Compose.DefaultTemplate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 256, cfg.QR.Size)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	p := writeConfig(t, `
server:
  port: 8081
paths:
  captured: /var/booth/captured
compose:
  decode_timeout: 3s
  jpeg_quality: 80
logging:
  level: debug
  format: console
`)
	t.Setenv("PHOTOBOOTH_SERVER_PORT", "9090")
	t.Setenv("PHOTOBOOTH_COMPOSE_DEFAULT_TEMPLATE", "strip")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/booth/captured", cfg.Paths.Captured)
	assert.Equal(t, 3*time.Second, cfg.Compose.DecodeTimeout)
	assert.Equal(t, 80, cfg.Compose.JPEGQuality)
	assert.Equal(t, "strip", cfg.Compose.DefaultTemplate)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PHOTOBOOTH_QR_SIZE=512\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PHOTOBOOTH_QR_SIZE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.QR.Size)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		body string
	}{
		{"quality", "compose:\n  jpeg_quality: 101\n"},
		{"port", "server:\n  port: 0\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"qr url", "qr:\n  base_url: not a url\n"},
		{"yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
