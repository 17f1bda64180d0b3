package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// PoolsAPIURL is the upstream yield-pool listing endpoint.
	PoolsAPIURL string
	// SourceChain is the chain whose pools are ingested from the listing.
	SourceChain string

	// WebPort is the port the JSON API listens on.
	WebPort string

	// CacheTTL is the freshness window of the read-through opportunity cache.
	CacheTTL time.Duration

	// FetchTimeout bounds a single upstream listing request.
	FetchTimeout time.Duration
	// FetchRetries is the number of attempts for the upstream listing request.
	FetchRetries int

	// DBHost enables the optional Postgres collection-history store when set.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Every knob has a working default; only the database
// block is optional as a whole (disabled when DB_HOST is unset).
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	PoolsAPIURL = getEnvWithDefault("POOLS_API_URL", "https://yields.llama.fi/pools")
	SourceChain = getEnvWithDefault("SOURCE_CHAIN", "Solana")
	WebPort = getEnvWithDefault("WEB_PORT", "8080")

	ttlMinutes, err := getEnvAsIntWithDefault("CACHE_TTL_MINUTES", 5)
	if err != nil {
		return err
	}
	if ttlMinutes <= 0 {
		return errors.New("CACHE_TTL_MINUTES must be positive")
	}
	CacheTTL = time.Duration(ttlMinutes) * time.Minute

	timeoutSeconds, err := getEnvAsIntWithDefault("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return err
	}
	if timeoutSeconds <= 0 {
		return errors.New("FETCH_TIMEOUT_SECONDS must be positive")
	}
	FetchTimeout = time.Duration(timeoutSeconds) * time.Second

	FetchRetries, err = getEnvAsIntWithDefault("FETCH_RETRIES", 3)
	if err != nil {
		return err
	}
	if FetchRetries < 1 {
		return errors.New("FETCH_RETRIES must be at least 1")
	}

	// Database configuration is optional. When DB_HOST is unset the
	// collection-history store stays disabled and the API serves without it.
	DBHost = os.Getenv("DB_HOST")
	if DBHost != "" {
		DBPort, err = getEnvAsIntWithDefault("DB_PORT", 5432)
		if err != nil {
			return err
		}
		DBUser, err = getEnv("DB_USER")
		if err != nil {
			return err
		}
		DBPassword, err = getEnv("DB_PASSWORD")
		if err != nil {
			return err
		}
		DBName, err = getEnv("DB_NAME")
		if err != nil {
			return err
		}
		DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	}

	log.Debug().
		Str("PoolsAPIURL", PoolsAPIURL).
		Str("SourceChain", SourceChain).
		Str("WebPort", WebPort).
		Dur("CacheTTL", CacheTTL).
		Bool("DBEnabled", DBHost != "").
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvWithDefault retrieves a string environment variable with a fallback.
func getEnvWithDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsIntWithDefault retrieves an environment variable as an int,
// using the fallback when unset. Returns error when set but invalid.
func getEnvAsIntWithDefault(key string, fallback int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
