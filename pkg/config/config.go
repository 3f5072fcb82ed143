package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	DatabaseDriver string
	DatabaseURL    string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	RevocationBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	access := []byte(os.Getenv("JWT_SECRET"))
	refresh := []byte(os.Getenv("JWT_REFRESH_SECRET"))
	if len(refresh) == 0 {
		refresh = access
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "*")),

		DatabaseDriver: strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  access,
		JWTRefreshSecret: refresh,
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RevocationBackend: strings.ToLower(EnvDefault("REVOCATION_BACKEND", "memory")),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: EnvDefault("KAFKA_TOPIC_PREFIX", "shop"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
