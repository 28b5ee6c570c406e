package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err, "Load error")

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "localhost:9000", cfg.Store.Endpoint)
	require.Equal(t, "minioadmin", cfg.Store.AccessKey)
	require.Equal(t, "minioadmin", cfg.Store.SecretKey)
	require.False(t, cfg.Store.UseSSL)
	require.Equal(t, "photo-gallery", cfg.Store.Bucket)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LUMEN_SERVER_PORT", "9090")
	t.Setenv("LUMEN_STORE_ENDPOINT", "minio.internal:9000")
	t.Setenv("LUMEN_STORE_BUCKET", "holiday-photos")
	t.Setenv("LUMEN_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err, "Load error")

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "minio.internal:9000", cfg.Store.Endpoint)
	require.Equal(t, "holiday-photos", cfg.Store.Bucket)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	contents := []byte(`
server:
  port: 7777
store:
  endpoint: files.example.com:9000
  bucket: gallery
  use_ssl: true
log:
  level: warn
`)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err, "Load error")

	require.Equal(t, 7777, cfg.Server.Port)
	require.Equal(t, "files.example.com:9000", cfg.Store.Endpoint)
	require.Equal(t, "gallery", cfg.Store.Bucket)
	require.True(t, cfg.Store.UseSSL)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "LUMEN_SERVER_PORT", value: "70000"},
		{name: "bad log level", key: "LUMEN_LOG_LEVEL", value: "verbose"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load("")
			require.Error(t, err, "invalid configuration must be rejected")
		})
	}
}
