package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REVOCATION_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "memory", cfg.RevocationBackend)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []byte("access"), cfg.JWTRefreshSecret)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []byte("refresh"), cfg.JWTRefreshSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("SHOP_INT", "abc")
	t.Setenv("SHOP_DUR", "-1s")
	t.Setenv("SHOP_BOOL", "maybe")

	assert.Equal(t, 7, EnvIntDefault("SHOP_INT", 7))
	assert.Equal(t, time.Second, EnvDurationDefault("SHOP_DUR", time.Second))
	assert.True(t, EnvBoolDefault("SHOP_BOOL", true))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a ,,b "))
}
