package database

import (
	"fmt"
	"time"

	"github.com/tychio/da-rmmv-plugins/internal/config"
)

// Config holds database connection configuration.
type Config struct {
	// Driver specifies which database to use: "sqlite" or "postgres"
	Driver string

	// SQLite configuration
	SQLitePath string

	// PostgreSQL configuration
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// DefaultConfig returns a Config with sensible defaults for SQLite.
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     "sqlite",
		SQLitePath: sqlitePath,
	}
}

// DefaultPostgresConfig returns PostgresConfig with recommended pool settings.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// FromStorage converts the storage section of the plugin config.
func FromStorage(s config.StorageConfig) Config {
	pg := DefaultPostgresConfig()
	if s.Postgres.Host != "" {
		pg.Host = s.Postgres.Host
	}
	if s.Postgres.Port != 0 {
		pg.Port = s.Postgres.Port
	}
	if s.Postgres.SSLMode != "" {
		pg.SSLMode = s.Postgres.SSLMode
	}
	pg.User = s.Postgres.User
	pg.Password = s.Postgres.Password
	pg.Database = s.Postgres.Database

	return Config{
		Driver:     s.Driver,
		SQLitePath: s.SQLitePath,
		Postgres:   pg,
	}
}
