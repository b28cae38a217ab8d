package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	MigrationsDir string
	CORSOrigin    string
	// Redis Configuration
	RedisURL string
	// Periodic reconciliation; zero disables the loop.
	ResyncInterval time.Duration
}

// Load reads configuration from the environment. An empty DATABASE_URL
// is not an error: the service runs in permanent offline mode against
// the local cache only.
func Load() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":8790"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		MigrationsDir:  getenv("VISIONPATH_MIGRATIONS_DIR", "./db/migrations"),
		CORSOrigin:     getenv("VISIONPATH_CORS_ORIGIN", "*"),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		ResyncInterval: time.Duration(getenvInt("VISIONPATH_RESYNC_SECONDS", 0)) * time.Second,
	}
}

// RemoteConfigured reports whether a remote store endpoint is present.
func (c Config) RemoteConfigured() bool {
	return c.DatabaseURL != ""
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
