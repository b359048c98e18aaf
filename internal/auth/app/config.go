package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LegacyBaseURL string        // Required: base URL of the legacy identity store
	LegacySecret  string        // Required: shared secret for legacy service calls
	LegacyTimeout time.Duration // Optional: per-call legacy request timeout (default: 10s)

	AdminSecret string // Optional: bearer secret for config writes; empty disables them

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	SessionTTL            time.Duration // Optional: issued session lifetime (default: 168h)
	ConfigTTL             time.Duration // Optional: config cache staleness bound (default: 1m)
	ConfigRefreshInterval time.Duration // Optional: background config reload period (default: 5m)
	HousekeepingInterval  time.Duration // Optional: expired-session cleanup period (default: 1h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		LegacyBaseURL: os.Getenv("LEGACY_BASE_URL"),
		LegacySecret:  os.Getenv("LEGACY_SERVICE_SECRET"),
		LegacyTimeout: getEnvDurationOrDefault("LEGACY_TIMEOUT", 10*time.Second),

		AdminSecret: os.Getenv("ADMIN_SECRET"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		SessionTTL:            getEnvDurationOrDefault("SESSION_TTL", 7*24*time.Hour),
		ConfigTTL:             getEnvDurationOrDefault("CONFIG_CACHE_TTL", time.Minute),
		ConfigRefreshInterval: getEnvDurationOrDefault("CONFIG_REFRESH_INTERVAL", 5*time.Minute),
		HousekeepingInterval:  getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
