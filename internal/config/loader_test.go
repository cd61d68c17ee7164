package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig lays out a config file and a token file in a temp
// directory and returns the config path.
func writeTestConfig(t *testing.T, token string) string {
	t.Helper()
	dir := t.TempDir()

	tokenPath := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte(token), 0600))

	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
upstream:
  base_url: https://api.example.com
  project_id: 42
  token_file: ` + tokenPath + `
cache:
  path: ` + filepath.Join(dir, "cache.json") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("loads a valid config", func(t *testing.T) {
		cfg, err := Load(writeTestConfig(t, "real-token\n"))
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
		assert.Equal(t, int64(42), cfg.Upstream.ProjectID)
		assert.Equal(t, "real-token", cfg.Upstream.Token.Value())
	})

	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load(writeTestConfig(t, "real-token"))
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9999")
		t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "30s")

		cfg, err := Load(writeTestConfig(t, "real-token"))
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Duration())
	})

	t.Run("rejects the placeholder token", func(t *testing.T) {
		_, err := Load(writeTestConfig(t, "changeme\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "placeholder")
	})

	t.Run("rejects an empty token file", func(t *testing.T) {
		_, err := Load(writeTestConfig(t, "  \n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("fails on a missing token file", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.yaml")
		content := `
upstream:
  base_url: https://api.example.com
  project_id: 42
  token_file: ` + filepath.Join(dir, "no-such-token") + `
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

		_, err := Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read token file")
	})

	t.Run("fails on a missing config file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("fails on malformed yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("server: [not a map"), 0600))

		_, err := Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config file")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				Host:            "localhost",
				Port:            8787,
				ShutdownTimeout: Duration(10 * time.Second),
			},
			Upstream: UpstreamConfig{
				BaseURL:   "https://api.example.com",
				TokenFile: "/etc/timeboard/token",
				ProjectID: 42,
				Token:     "tok",
			},
			Cache: CacheConfig{Path: "cache.json"},
		}
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects a bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())

		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a missing base url", func(t *testing.T) {
		cfg := valid()
		cfg.Upstream.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a missing project id", func(t *testing.T) {
		cfg := valid()
		cfg.Upstream.ProjectID = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a missing cache path", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Path = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestSecretRedaction(t *testing.T) {
	assert.Equal(t, "[REDACTED]", Secret("tok").String())
	assert.Equal(t, "", Secret("").String())
	assert.Equal(t, "tok", Secret("tok").Value())
}
