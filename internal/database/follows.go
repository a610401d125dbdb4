// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// CreateFollow inserts the edge follower -> followee. The primary key makes a
// second insert fail with ErrDuplicate; there is no existence pre-check.
func (db *DB) CreateFollow(ctx context.Context, followerID, followeeID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at) VALUES ($1, $2, $3)`,
		followerID, followeeID, now())
	recordQuery("insert", "follows", start, err)
	if err != nil {
		return translateInsertError(err, "create follow")
	}
	return nil
}

// DeleteFollow removes the edge, returning ErrNotFound when it was absent.
func (db *DB) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	recordQuery("delete", "follows", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return checkRowsAffected(result)
}

// FollowingIDs returns the ids the viewer follows, in no particular order.
func (db *DB) FollowingIDs(ctx context.Context, viewerID string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `SELECT followee_id FROM follows WHERE follower_id = $1`, viewerID)
	recordQuery("select", "follows", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query following: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followee: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate following: %w", err)
	}
	return ids, nil
}

// IsFollowing reports whether follower -> followee exists.
func (db *DB) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return n > 0, nil
}

// CountFollowers counts accounts following id.
func (db *DB) CountFollowers(ctx context.Context, id string) (int64, error) {
	return db.countWhere(ctx, `SELECT COUNT(*) FROM follows WHERE followee_id = $1`, id, "count followers")
}

// CountFollowing counts accounts id follows.
func (db *DB) CountFollowing(ctx context.Context, id string) (int64, error) {
	return db.countWhere(ctx, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, id, "count following")
}

// ListFollowers returns the public summaries of id's followers, newest edge first.
func (db *DB) ListFollowers(ctx context.Context, id string) ([]models.PublicAccount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+publicAccountColumns+`
		FROM follows f JOIN accounts a ON a.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC, a.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return scanPublicAccounts(rows)
}

// ListFollowing returns the public summaries of accounts id follows, newest edge first.
func (db *DB) ListFollowing(ctx context.Context, id string) ([]models.PublicAccount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+publicAccountColumns+`
		FROM follows f JOIN accounts a ON a.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, a.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return scanPublicAccounts(rows)
}

func (db *DB) countWhere(ctx context.Context, stmt, arg, action string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, stmt, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to %s: %w", action, err)
	}
	return n, nil
}
