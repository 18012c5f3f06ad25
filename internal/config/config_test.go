package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLFromParts(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "festivals")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQL, cfg.Store)
	assert.Contains(t, cfg.DatabaseURL, "root@tcp(localhost:3306)/festivals")
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadReportsEveryMissingVar(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("STORE_BACKEND", "data-api")
	t.Setenv("DATA_API_URL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("DATA_API_KEY", "")
	t.Setenv("SUPABASE_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"APP_ENV", "APP_PORT", "DATA_API_URL or SUPABASE_URL", "DATA_API_KEY or SUPABASE_API_KEY"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadDataAPIFallback(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORE_BACKEND", "data-api")
	t.Setenv("DATA_API_URL", "")
	t.Setenv("DATA_API_KEY", "")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_API_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://project.supabase.co", cfg.DataAPIURL)
	assert.Equal(t, "anon", cfg.DataAPIKey)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid STORE_BACKEND")
}

func TestRateLimitNormalized(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestCacheMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
