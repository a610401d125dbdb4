// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tomtom215/shutterfeed/internal/metrics"
)

var (
	// ErrNotFound is returned when a lookup or removal matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// DuckDB messages contain "PRIMARY KEY or UNIQUE constraint" or "Duplicate key"
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// translateInsertError maps uniqueness violations to ErrDuplicate and wraps
// everything else.
func translateInsertError(err error, action string) error {
	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// translateScanError maps sql.ErrNoRows to ErrNotFound.
func translateScanError(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// checkRowsAffected returns ErrNotFound when result touched no rows.
func checkRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// recordQuery reports query latency. Not-found and duplicate outcomes are
// expected results, not query errors.
func recordQuery(operation, table string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows) || isUniqueConstraintError(err) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
