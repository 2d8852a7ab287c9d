package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, SourceAPI, cfg.MBTA.Source)
	assert.Equal(t, "https://api-v3.mbta.com/", cfg.MBTA.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.MBTA.Timeout)
	assert.Equal(t, 512, cfg.MBTA.PathCacheSize)
	assert.Empty(t, cfg.MBTA.ReloadSchedule)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Admin.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MBTA_SOURCE", "file")
	t.Setenv("MBTA_FIXTURE_PATH", "testdata/subway.yaml")
	t.Setenv("MBTA_TIMEOUT_SECONDS", "5")
	t.Setenv("ROUTE_RELOAD_SCHEDULE", "0 0 4 * * *")
	t.Setenv("PATH_CACHE_SIZE", "0")
	t.Setenv("DATABASE_URL", "postgres://localhost/subway")
	t.Setenv("DATABASE_CONNECT_TIMEOUT", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.MBTA.Source)
	assert.Equal(t, "testdata/subway.yaml", cfg.MBTA.FixturePath)
	assert.Equal(t, 5*time.Second, cfg.MBTA.Timeout)
	assert.Equal(t, "0 0 4 * * *", cfg.MBTA.ReloadSchedule)
	assert.Equal(t, 0, cfg.MBTA.PathCacheSize)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidIntegerFallsBack(t *testing.T) {
	t.Setenv("PATH_CACHE_SIZE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.MBTA.PathCacheSize)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown source", env: map[string]string{"MBTA_SOURCE": "ftp"}},
		{name: "file source without fixture", env: map[string]string{"MBTA_SOURCE": "file"}},
		{name: "bad environment", env: map[string]string{"ENVIRONMENT": "qa"}},
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
		{name: "negative cache size", env: map[string]string{"PATH_CACHE_SIZE": "-5"}},
		{name: "zero database connect timeout", env: map[string]string{"DATABASE_CONNECT_TIMEOUT": "0"}},
		{name: "admin without secret", env: map[string]string{"ADMIN_API_ENABLED": "true"}},
		{name: "admin with short secret", env: map[string]string{"ADMIN_API_ENABLED": "true", "JWT_SECRET": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoad_AdminEnabled(t *testing.T) {
	t.Setenv("ADMIN_API_ENABLED", "true")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiry)
}
