// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package config loads Shutterfeed configuration from layered sources.
//
// Sources are applied in order of increasing priority:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML config file (CONFIG_PATH, config.yaml, /etc/shutterfeed/config.yaml)
//  3. Environment variables (explicit mapping in envTransformFunc)
//
// The merged result is validated before it is returned.
package config

import "time"

// Database driver names accepted by DatabaseConfig.Driver.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// DatabaseConfig selects and tunes the SQL backend.
//
// With Driver "duckdb" the store is an embedded DuckDB file at Path (":memory:"
// for an ephemeral database). With Driver "postgres" the store connects to URL
// through pgx.
type DatabaseConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	URL          string        `koanf:"url"`
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads"` // 0 = use runtime.NumCPU()
	MaxOpenConns int           `koanf:"max_open_conns"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// APIConfig holds pagination and listing limits.
type APIConfig struct {
	DefaultPageSize    int `koanf:"default_page_size"`
	MaxPageSize        int `koanf:"max_page_size"`
	DefaultCommentSize int `koanf:"default_comment_size"`
	FeedCommentLimit   int `koanf:"feed_comment_limit"`
	DetailCommentLimit int `koanf:"detail_comment_limit"`
	SearchLimit        int `koanf:"search_limit"`
}

// SecurityConfig holds session, rate limit and CORS settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	LoginAttempts     int           `koanf:"login_attempts"` // per identifier per LoginWindow
	LoginWindow       time.Duration `koanf:"login_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// RevocationStore is "memory" (default) or "badger".
	RevocationStore string `koanf:"revocation_store"`
	// RevocationPath is the BadgerDB directory (required when revocation_store=badger)
	RevocationPath string `koanf:"revocation_path"`
}

// AuditConfig controls the asynchronous audit trail of destructive actions.
type AuditConfig struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs with production checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
