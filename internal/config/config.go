package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Booking behavior.
	GraceHours            int
	ReservationTTLMinutes int
	CleanupCron           string
	StatsCron             string

	// External calendar. An empty base URL disables the integration.
	CalendarBaseURL string
	CalendarTimeout time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Minimum lead time before a slot may be booked, in hours (default: 24)
	cfg.GraceHours, err = getEnvAsInt("GRACE_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid GRACE_HOURS: %w", err)
	}
	if cfg.GraceHours < 0 {
		return nil, fmt.Errorf("GRACE_HOURS must not be negative")
	}

	// How long an unconfirmed hold stays alive (default: 30 minutes)
	cfg.ReservationTTLMinutes, err = getEnvAsInt("RESERVATION_TTL_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid RESERVATION_TTL_MINUTES: %w", err)
	}
	if cfg.ReservationTTLMinutes <= 0 {
		return nil, fmt.Errorf("RESERVATION_TTL_MINUTES must be positive")
	}

	// Cron specs for the cleanup worker
	cfg.CleanupCron = getEnv("CLEANUP_CRON", "*/5 * * * *")
	cfg.StatsCron = getEnv("STATS_CRON", "@hourly")

	// External calendar endpoint (default: disabled)
	cfg.CalendarBaseURL = getEnv("CALENDAR_BASE_URL", "")
	timeoutStr := getEnv("CALENDAR_TIMEOUT", "5s")
	cfg.CalendarTimeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}
