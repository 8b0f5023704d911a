package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t, "PORT", "USE_HTTP2", "CORS_ORIGINS", "ENV_PATH")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.UseHttp2)
	assert.Equal(t, []string{"*"}, cfg.CorsOrigins)
}

func TestLoadConfig_ReadsDotEnvFile(t *testing.T) {
	clearEnv(t, "PORT", "USE_HTTP2", "CORS_ORIGINS")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=9090\nUSE_HTTP2=true\n"), 0o600))
	t.Setenv("ENV_PATH", envFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UseHttp2)
}

func TestLoadConfig_CorsOriginsParsed(t *testing.T) {
	clearEnv(t, "PORT", "USE_HTTP2", "ENV_PATH")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	clearEnv(t, "USE_HTTP2", "CORS_ORIGINS", "ENV_PATH")
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig()
	assert.Error(t, err)
}
