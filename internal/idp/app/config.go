package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: sessiongate-idp)

	DatabaseFile string // Optional: path to SQLite database file (default: ./idp.db)
	PepperFile   string // Optional: path to password pepper file (default: ./pepper)

	AccessTTL     time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Optional: refresh token lifetime (default: 720h)
	RotateRefresh bool          // Optional: rotate refresh tokens on use (default: true)

	SeedUsername      string // Optional: demo account created on an empty database
	SeedPassword      string
	SeedPreferredName string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8081)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer: getEnvOrDefault("IDP_ISSUER", "sessiongate-idp"),

		DatabaseFile: getEnvOrDefault("IDP_DATABASE_FILE", "idp.db"),
		PepperFile:   getEnvOrDefault("IDP_PEPPER_FILE", "pepper"),

		AccessTTL:     getEnvDurationOrDefault("IDP_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getEnvDurationOrDefault("IDP_REFRESH_TTL", 30*24*time.Hour),
		RotateRefresh: getEnvBoolOrDefault("IDP_ROTATE_REFRESH", true),

		SeedUsername:      getEnvOrDefault("IDP_SEED_USERNAME", "demo"),
		SeedPassword:      getEnvOrDefault("IDP_SEED_PASSWORD", "demo-password"),
		SeedPreferredName: getEnvOrDefault("IDP_SEED_PREFERRED_NAME", "Demo User"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8081),
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
