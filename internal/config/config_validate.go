// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the shortest HMAC secret accepted for session tokens.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverDuckDB, DriverPostgres, c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must not be negative")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and %d, got %d", c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.DefaultCommentSize < 1 || c.API.DefaultCommentSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_COMMENT_SIZE must be between 1 and %d, got %d", c.API.MaxPageSize, c.API.DefaultCommentSize)
	}
	if c.API.FeedCommentLimit < 0 || c.API.DetailCommentLimit < 0 {
		return fmt.Errorf("comment limits must not be negative")
	}
	if c.API.SearchLimit < 1 {
		return fmt.Errorf("API_SEARCH_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.Security.LoginAttempts < 1 || c.Security.LoginWindow <= 0 {
		return fmt.Errorf("LOGIN_ATTEMPTS and LOGIN_WINDOW must be positive")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" && c.IsProduction() {
			return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
		}
	}
	switch c.Security.RevocationStore {
	case "", "memory":
	case "badger":
		if c.Security.RevocationPath == "" {
			return fmt.Errorf("REVOCATION_PATH is required when REVOCATION_STORE=badger")
		}
	default:
		return fmt.Errorf("REVOCATION_STORE must be 'memory' or 'badger', got %q", c.Security.RevocationStore)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
