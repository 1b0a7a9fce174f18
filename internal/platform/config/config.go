// Copyright (c) 2026 Katalog. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Optional Backends: An empty DATABASE_URL selects the in-process snapshot.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrMissingJWTSecret is returned when production runs without a token secret.
var ErrMissingJWTSecret = errors.New("config: SUPABASE_JWT_SECRET must be set in production")

// # Configuration Schema

// Config holds all runtime configuration for the Katalog API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Persistent document store (PostgreSQL). Leave empty to serve the
	// catalog from the in-process snapshot.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath overrides the embedded SQL migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// QueryTimeout bounds every persistent backend read and write.
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"15s"`

	// CatalogSourcePath overrides the embedded static catalog source.
	CatalogSourcePath string `env:"CATALOG_SOURCE_PATH"`

	// Key-Value store (Redis) for shared rate-limit buckets. Optional.
	RedisURL string `env:"REDIS_URL"`

	// Token verification for the external identity provider
	JWTSecret   string `env:"SUPABASE_JWT_SECRET"`
	JWTAudience string `env:"SUPABASE_JWT_AUDIENCE" envDefault:"authenticated"`

	// Cross-Origin Resource Sharing (comma-separated)
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}

	if c.QueryTimeout <= 0 {
		return fmt.Errorf("config: DB_QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PersistentBackendConfigured reports whether a document store DSN was supplied.
func (c *Config) PersistentBackendConfigured() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// Origins returns the parsed CORS allow-list.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
