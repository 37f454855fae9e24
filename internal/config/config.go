// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists the origins the browser client may call
	// from. An empty list allows none.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the SQL backend: "pgx" for PostgreSQL or "sqlite"
	// for an embedded file database.
	Driver string `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
// Token issuance lives with the identity provider; this service only
// verifies bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SessionConfig tunes session lifecycle housekeeping.
type SessionConfig struct {
	// DefaultMaxCards caps the deck when a create request omits maxCards.
	DefaultMaxCards int `mapstructure:"default_max_cards" validate:"required,gt=0"`

	// StaleAfter is how long an untouched active session may live before
	// the sweep marks it abandoned.
	StaleAfter time.Duration `mapstructure:"stale_after" validate:"required"`

	// SweepInterval is how often the abandonment sweep runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
}
