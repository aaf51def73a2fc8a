package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) AppConfig {
	t.Helper()
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeOIDC, cfg.Provider.Mode)
	assert.Equal(t, "openid profile email", cfg.Provider.Scope)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, "/api/auth/login", cfg.Backend.AdminLoginPath)
	assert.Equal(t, "/auth/CandidateLogin", cfg.Backend.CandidateLoginPath)
	assert.Equal(t, VaultBackendSQLite, cfg.Vault.Backend)
	assert.Equal(t, ".hrclient/vault.db", cfg.Vault.Path)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"/login", "/admin/login"}, cfg.HTTP.LoginPaths)
	assert.False(t, cfg.Statsd.Enabled)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEV", "true")
	t.Setenv("IDP_MODE", "mock")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("VAULT_BACKEND", "redis")
	t.Setenv("VAULT_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("HTTP_LOGIN_PATHS", "/signin;/admin/signin")

	cfg := parseConfig(t)

	assert.True(t, cfg.IsDev)
	assert.Equal(t, AuthModeMock, cfg.Provider.Mode)
	// Sanitize strips the trailing slash.
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, VaultBackendRedis, cfg.Vault.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Vault.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"/signin", "/admin/signin"}, cfg.HTTP.LoginPaths)
}

func TestAppConfig_NodeEnvFallback(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := parseConfig(t)
	assert.True(t, cfg.IsDev)
}

func TestAppConfig_InvalidVaultBackend(t *testing.T) {
	t.Setenv("VAULT_BACKEND", "postgres")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid VaultBackend")
}

func TestAppConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("IDP_MODE", "saml")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestVaultConfig_SanitizeEmptyPath(t *testing.T) {
	cfg := VaultConfig{Path: "   "}
	cfg.Sanitize()
	assert.Equal(t, ".hrclient/vault.db", cfg.Path)
}

func TestHTTPConfig_SanitizeNegativeTimeout(t *testing.T) {
	cfg := HTTPConfig{Timeout: -time.Second}
	cfg.Sanitize()
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}
