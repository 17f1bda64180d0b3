// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool. It stays nil when the collection
// history store is disabled; every store function checks Enabled first.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// Enabled reports whether the history store is active.
func Enabled() bool {
	return DB != nil
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pipeline_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			min_tvl_floor DECIMAL(20, 8) NOT NULL,
			min_apy DECIMAL(10, 4) NOT NULL, max_apy DECIMAL(10, 4) NOT NULL,
			min_tvl DECIMAL(20, 8) NOT NULL, std_dev_multiplier DECIMAL(10, 4) NOT NULL,
			tvl_weight DECIMAL(10, 4) NOT NULL, protocol_weight DECIMAL(10, 4) NOT NULL,
			apy_weight DECIMAL(10, 4) NOT NULL, tvl_full_confidence DECIMAL(20, 8) NOT NULL,
			low_risk_threshold DECIMAL(10, 4) NOT NULL, medium_risk_threshold DECIMAL(10, 4) NOT NULL,
			high_risk_threshold DECIMAL(10, 4) NOT NULL,
			max_positions INTEGER NOT NULL,
			CONSTRAINT uq_pipeline_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_pipeline_parameters_config_active ON pipeline_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS collection_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			collected_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			raw_pool_count INTEGER NOT NULL,
			opportunity_count INTEGER NOT NULL,
			outliers_removed INTEGER NOT NULL,
			total_tvl DECIMAL(24, 8) NOT NULL,
			average_apy DECIMAL(12, 6) NOT NULL,
			categories JSONB,
			top_protocols JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_collection_snapshots_collected_at ON collection_snapshots(collected_at DESC);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
