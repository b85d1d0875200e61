package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgdl/go-sgdl-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8006/api/", cfg.GetBaseURL())
	require.Equal(t, 30*time.Second, cfg.GetHTTPTimeout())
	require.Equal(t, "/login", cfg.GetLoginPath())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_url: https://sgdl.example.gov.br/api/\n"+
			"state_folder: /var/lib/sgdl\n"+
			"http_timeout: 5s\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://sgdl.example.gov.br/api/", cfg.GetBaseURL())
	require.Equal(t, "/var/lib/sgdl", cfg.GetStateFolder())
	require.Equal(t, 5*time.Second, cfg.GetHTTPTimeout())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [broken\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
