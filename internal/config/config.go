package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	// LogLevel overrides the environment's default (debug, info, warn, error)
	LogLevel string

	// Database
	DatabaseURL string
	AutoMigrate bool

	// Background Workers
	WorkerCount int

	// Scheduled jobs (cron expressions, empty disables)
	SweepSchedule  string
	ExtendSchedule string

	// Number of months ahead materialized for open-ended recurring obligations
	RecurringHorizonMonths int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		LogLevel:               getEnv("LOG_LEVEL", ""),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		AutoMigrate:            getEnvAsBool("AUTO_MIGRATE", true),
		WorkerCount:            getEnvAsInt("WORKER_COUNT", 5),
		SweepSchedule:          getEnv("SWEEP_SCHEDULE", "@every 15m"),
		ExtendSchedule:         getEnv("EXTEND_SCHEDULE", "0 2 * * *"),
		RecurringHorizonMonths: getEnvAsInt("RECURRING_HORIZON_MONTHS", 1),
		AllowedOrigins:         getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RecurringHorizonMonths < 0 {
		return nil, fmt.Errorf("RECURRING_HORIZON_MONTHS must not be negative")
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
