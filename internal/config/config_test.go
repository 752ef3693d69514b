package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 9090
  read_timeout: 10s
  write_timeout: 60s

providers:
  groq:
    enabled: true
    api_key: ${TEST_API_KEY}
    base_url: https://api.groq.com/openai/v1
    models:
      - llama-3.1-70b-versatile
      - llama-3.1-8b-instant
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("TEST_API_KEY", "my-secret-key")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)

	groq, ok := cfg.Providers["groq"]
	assert.True(t, ok, "groq provider should exist")
	assert.True(t, groq.Enabled)
	assert.Equal(t, "my-secret-key", groq.APIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", groq.BaseURL)
	assert.Equal(t, []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant"}, groq.Models)
	// Timeout default applied since the fixture doesn't set one.
	assert.Equal(t, defaultProviderTimeout, groq.Timeout)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 8080
  read_timeout: 30s
  write_timeout: 120s
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// LLMUX_SERVER_PORT should override server.port from 8080 to 3000.
	t.Setenv("LLMUX_SERVER_PORT", "3000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestExpandEnvDefault(t *testing.T) {
	t.Setenv("UNSET_VAR_FOR_TEST", "")
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	got := expandEnv("key: ${UNSET_VAR_FOR_TEST:-fallback-value}")
	assert.Equal(t, "key: fallback-value", got)
}

func TestExpandEnvPrefersSetValue(t *testing.T) {
	t.Setenv("SET_VAR_FOR_TEST", "real-value")

	got := expandEnv("key: ${SET_VAR_FOR_TEST:-fallback-value}")
	assert.Equal(t, "key: real-value", got)
}

func TestAuthConfigKeys(t *testing.T) {
	a := AuthConfig{
		APIKey: "solo-key",
		APIKeys: map[string]string{
			"ops": "ops-key",
		},
	}
	keys := a.Keys()
	assert.Equal(t, "solo-key", keys["default"])
	assert.Equal(t, "ops-key", keys["ops"])
}

func TestCacheAndRoutingDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 8080\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "first-available", cfg.Routing.DefaultStrategy)
	assert.Equal(t, 3600*time.Second, cfg.Cache.Memory.TTL)
	assert.Equal(t, 10000, cfg.Cache.Memory.MaxItems)
}
