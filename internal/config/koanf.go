// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shutterfeed/config.yaml",
	"/etc/shutterfeed/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Driver:       DriverDuckDB,
			Path:         "/data/shutterfeed.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			MaxOpenConns: 10,
			QueryTimeout: 30 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize:    10,
			MaxPageSize:        100,
			DefaultCommentSize: 50,
			FeedCommentLimit:   10,
			DetailCommentLimit: 50,
			SearchLimit:        10,
		},
		Security: SecurityConfig{
			SessionTimeout:    7 * 24 * time.Hour,
			BcryptCost:        10,
			CookieSecure:      false,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			LoginAttempts:     5,
			LoginWindow:       time.Minute,
			CORSOrigins:       []string{},
			RevocationStore:   "memory",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults (lowest priority)
//  2. Config file (if found)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or empty string if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars always arrive as strings while the YAML file may already carry a list.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Database
	"db_driver":         "database.driver",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"database_url":      "database.url",
	"db_max_open_conns": "database.max_open_conns",
	"db_query_timeout":  "database.query_timeout",

	// API
	"api_default_page_size":    "api.default_page_size",
	"api_max_page_size":        "api.max_page_size",
	"api_default_comment_size": "api.default_comment_size",
	"api_feed_comment_limit":   "api.feed_comment_limit",
	"api_detail_comment_limit": "api.detail_comment_limit",
	"api_search_limit":         "api.search_limit",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"cookie_secure":       "security.cookie_secure",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"login_attempts":      "security.login_attempts",
	"login_window":        "security.login_window",
	"cors_origins":        "security.cors_origins",
	"revocation_store":    "security.revocation_store",
	"revocation_path":     "security.revocation_path",

	// Audit
	"audit_enabled":     "audit.enabled",
	"audit_buffer_size": "audit.buffer_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - DATABASE_URL -> database.url
//   - JWT_SECRET -> security.jwt_secret
//
// Unmapped variables return an empty key and are skipped, so unrelated
// environment variables never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
