package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	UpstreamURL string // Required: base URL of the upstream identity provider

	AccessCookieName  string        // Optional: access cookie name (default: sg_access)
	RefreshCookieName string        // Optional: refresh cookie name (default: sg_refresh)
	AccessTTL         time.Duration // Optional: access cookie lifetime (default: 15m)
	RefreshTTL        time.Duration // Optional: refresh cookie lifetime (default: 720h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		UpstreamURL: os.Getenv("GATEWAY_UPSTREAM_URL"),

		AccessCookieName:  getEnvOrDefault("GATEWAY_ACCESS_COOKIE", ""),
		RefreshCookieName: getEnvOrDefault("GATEWAY_REFRESH_COOKIE", ""),
		AccessTTL:         getEnvDurationOrDefault("GATEWAY_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:        getEnvDurationOrDefault("GATEWAY_REFRESH_TTL", 30*24*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = "http://localhost:8081" // Default to a local identity provider
	}

	return cfg
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
