package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to the ALEMBIC_DB_URL or
	// DATABASE_URL env var)
	URL string
}

// Connect establishes a master database connection.
// If no URL is provided, it reads from the environment.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("ALEMBIC_DB_URL or DATABASE_URL environment variable is required")
	}

	// Default to silent logging unless TENANTCTL_LOG_LEVEL=debug is set
	logMode := logger.Silent
	if os.Getenv("TENANTCTL_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	database, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return database, nil
}

// URL returns the master database URL from the environment: ALEMBIC_DB_URL
// first, DATABASE_URL as the fallback. Returns empty string if neither is
// set.
func URL() string {
	if u := os.Getenv("ALEMBIC_DB_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}
