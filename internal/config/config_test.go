package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "PORT", "STORE_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "JWT_SECRET", "SESSION_TTL", "COOKIE_SECURE",
		"CORS_ORIGIN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, []string{"https://kodcommunity.netlify.app"}, cfg.CORSOrigins)
}

func TestLoad_ComposesDSNFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "kod")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "forum")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"host=db port=5432 user=kod password=pw dbname=forum sslmode=disable TimeZone=UTC",
		cfg.Database.DSN)
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/forum")
	t.Setenv("DB_HOST", "ignored")
	t.Setenv("DB_NAME", "ignored")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/forum", cfg.Database.DSN)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_ParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CORS_ORIGIN", "http://localhost:3000, https://kod.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://localhost:3000", "https://kod.example"}, cfg.CORSOrigins)
}

func TestValidate_UnknownStoreAndPort(t *testing.T) {
	cfg := &Config{JWTSecret: "s", SessionTTL: time.Hour, StoreDriver: "mongo", Port: "abc"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORE_DRIVER "mongo"`)
	assert.Contains(t, err.Error(), `invalid PORT "abc"`)
}
