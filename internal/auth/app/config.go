package app

import (
	"os"
	"strconv"
	"time"

	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
)

type Config struct {
	DatabaseURL string        // Required: PostgreSQL connection string
	JWTSecret   string        // Required: HMAC secret for session tokens
	Issuer      string        // Optional: issuer claim for tokens (default: crewdesk-auth)
	SessionTTL  time.Duration // Optional: session token lifetime (default: 24h)

	AppName   string // Optional: issuer label in authenticator apps (default: CrewDesk)
	ClientURL string // Optional: frontend base URL for password reset links

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromAddr     string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Issuer:      getEnvOrDefault("JWT_ISSUER", "crewdesk-auth"),
		SessionTTL:  getEnvDurationOrDefault("JWT_EXPIRE", jwtx.DefaultSessionTTL),

		AppName:   getEnvOrDefault("APP_NAME", "CrewDesk"),
		ClientURL: getEnvOrDefault("CLIENT_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromName:     getEnvOrDefault("FROM_NAME", "CrewDesk"),
		FromAddr:     getEnvOrDefault("FROM_EMAIL", "noreply@crewdesk.io"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
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

	// Try parsing as duration (e.g., "24h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer days, the convention used by the old deploy env
	if days, err := strconv.Atoi(value); err == nil {
		return time.Duration(days) * 24 * time.Hour
	}

	return defaultValue
}
