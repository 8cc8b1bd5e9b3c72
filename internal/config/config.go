// Package config loads the elevation engine's runtime configuration from
// environment variables, optionally seeded from a .env file — the same
// flat-struct-from-env idiom the teacher's cmd/api/main.go uses directly
// against os.Getenv, just centralized into one loader.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full set of environment-driven settings for the
// elevation engine's CLIs and HTTP façade.
type Config struct {
	DataFolder           string
	SummaryFile          string
	OpenInterfacesSize   int
	AlwaysRebuildSummary bool

	DatabaseURL string // optional: Postgres-backed catalog store
	RedisURL    string // optional: rate limiting / lookup result cache

	S3Bucket string // optional: tile prefetch source
	S3Prefix string

	Host string
	Port string
}

// Load reads configuration from the process environment, first loading a
// .env file if present (ignored if absent, matching godotenv's usual
// best-effort use in the pack).
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file loaded", "error", err)
	}

	return Config{
		DataFolder:           getEnv("DATA_FOLDER", "data"),
		SummaryFile:          getEnv("SUMMARY_FILE", "data/summary.json"),
		OpenInterfacesSize:   getEnvInt("OPEN_INTERFACES_SIZE", 5),
		AlwaysRebuildSummary: getEnvBool("ALWAYS_REBUILD_SUMMARY", false),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		S3Bucket:             os.Getenv("S3_BUCKET"),
		S3Prefix:             os.Getenv("S3_PREFIX"),
		Host:                 getEnv("HOST", "0.0.0.0"),
		Port:                 getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: invalid integer env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: invalid boolean env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}
