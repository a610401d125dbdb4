// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shutterfeed/internal/database/query"
	"github.com/tomtom215/shutterfeed/internal/models"
)

const accountColumns = `id, handle, email, password_hash, display_name, bio, avatar_url, created_at, updated_at`

// publicAccountColumns selects a PublicAccount from alias a. COALESCE keeps
// rows whose account was removed scannable.
const publicAccountColumns = `COALESCE(a.id, ''), COALESCE(a.handle, ''), COALESCE(a.display_name, ''), COALESCE(a.avatar_url, '')`

// newID returns a time-ordered UUIDv7 string so that id order follows
// creation order, which keeps the (created_at, id) tiebreak meaningful.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Handle, &a.Email, &a.PasswordHash, &a.DisplayName,
		&a.Bio, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanPublicAccounts(rows *sql.Rows) ([]models.PublicAccount, error) {
	defer rows.Close()

	accounts := []models.PublicAccount{}
	for rows.Next() {
		var a models.PublicAccount
		if err := rows.Scan(&a.ID, &a.Handle, &a.DisplayName, &a.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount inserts a new account. ID and timestamps are assigned here and
// the email is stored lowercased. Returns ErrDuplicate when the handle or
// email is taken.
func (db *DB) CreateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	a.ID = newID()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Handle, a.Email, a.PasswordHash, a.DisplayName, a.Bio, a.AvatarURL, a.CreatedAt, a.UpdatedAt)
	recordQuery("insert", "accounts", start, err)
	if err != nil {
		return translateInsertError(err, "create account")
	}
	return nil
}

// GetAccount returns the account with the given id or ErrNotFound.
func (db *DB) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return db.getAccountBy(ctx, "id", id)
}

// GetAccountByHandle returns the account with an exact handle match.
func (db *DB) GetAccountByHandle(ctx context.Context, handle string) (*models.Account, error) {
	return db.getAccountBy(ctx, "handle", handle)
}

// GetAccountByEmail looks up an account by email, case-insensitively.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return db.getAccountBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// getAccountBy is only called with the fixed column names above.
func (db *DB) getAccountBy(ctx context.Context, column, value string) (*models.Account, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE `+column+` = $1`, value)
	a, err := scanAccount(row)
	recordQuery("select", "accounts", start, err)
	if err != nil {
		return nil, translateScanError(err, "get account")
	}
	return a, nil
}

// AccountExists reports whether an account with the id exists.
func (db *DB) AccountExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE id = $1`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return n > 0, nil
}

// SearchAccounts matches q as a case-insensitive substring of the handle or
// display name, ordered by handle.
func (db *DB) SearchAccounts(ctx context.Context, q string, limit int) ([]models.PublicAccount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	wb := query.NewWhereBuilder()
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	wb.AddClause(`(LOWER(a.handle) LIKE ? ESCAPE '\' OR LOWER(a.display_name) LIKE ? ESCAPE '\')`, pattern, pattern)
	where, _ := wb.BuildWithPrefix()
	limitArg := wb.Arg(limit)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+publicAccountColumns+` FROM accounts a `+where+` ORDER BY a.handle LIMIT `+limitArg,
		wb.Args()...)
	recordQuery("select", "accounts", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	return scanPublicAccounts(rows)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
