// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/logging"
)

// sql.Open driver names.
const (
	duckdbDriverName   = "duckdb"
	postgresDriverName = "pgx"
)

const defaultQueryTimeout = 30 * time.Second

// DB wraps the SQL connection pool and provides data access methods.
type DB struct {
	conn         *sql.DB
	driver       string
	queryTimeout time.Duration
}

// New opens the configured backend and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err = sql.Open(postgresDriverName, cfg.URL)
	case config.DriverDuckDB, "":
		conn, err = openDuckDB(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverDuckDB
	}

	db := &DB{
		conn:         conn,
		driver:       driver,
		queryTimeout: cfg.QueryTimeout,
	}
	if db.queryTimeout <= 0 {
		db.queryTimeout = defaultQueryTimeout
	}

	db.configureConnectionPool(cfg.MaxOpenConns)

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("driver", driver).
		Msg("Database initialized")

	return db, nil
}

// NewWithConn wraps an already-open connection without touching the schema.
// Tests use it with sqlmock.
func NewWithConn(conn *sql.DB, driver string) *DB {
	return &DB{
		conn:         conn,
		driver:       driver,
		queryTimeout: defaultQueryTimeout,
	}
}

func openDuckDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, maxMemory)

	return sql.Open(duckdbDriverName, connStr)
}

func (db *DB) configureConnectionPool(maxOpen int) {
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying SQL connection pool. The audit store shares it.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the configured driver ("duckdb" or "postgres").
func (db *DB) Driver() string {
	return db.driver
}

// Close flushes the DuckDB WAL and closes the pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.driver == config.DriverDuckDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}

	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// ensureContext applies the query timeout when ctx carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), db.queryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, db.queryTimeout)
	}

	return ctx, func() {}
}

// now returns the current time in UTC truncated to the microsecond precision
// both backends store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
