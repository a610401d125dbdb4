// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shutterfeed/internal/database/query"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// CreateLike records that accountID liked postID. A repeated like fails with
// ErrDuplicate from the primary key.
func (db *DB) CreateLike(ctx context.Context, accountID, postID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (account_id, post_id, created_at) VALUES ($1, $2, $3)`,
		accountID, postID, now())
	recordQuery("insert", "likes", start, err)
	if err != nil {
		return translateInsertError(err, "create like")
	}
	return nil
}

// DeleteLike removes a like, returning ErrNotFound when it was absent.
func (db *DB) DeleteLike(ctx context.Context, accountID, postID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE account_id = $1 AND post_id = $2`, accountID, postID)
	recordQuery("delete", "likes", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return checkRowsAffected(result)
}

// CountLikes counts likes on one post.
func (db *DB) CountLikes(ctx context.Context, postID string) (int64, error) {
	return db.countWhere(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID, "count likes")
}

// LikeCounts returns like counts for every post id in one grouped query.
// Posts without likes are absent from the map.
func (db *DB) LikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	wb := query.NewWhereBuilder()
	wb.AddIn("post_id", postIDs)
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id, COUNT(*) FROM likes `+where+` GROUP BY post_id`, args...)
	recordQuery("select", "likes", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			n      int64
		)
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan like count: %w", err)
		}
		counts[postID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate like counts: %w", err)
	}
	return counts, nil
}

// LikedPostIDs returns the subset of postIDs the viewer has liked.
func (db *DB) LikedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if viewerID == "" || len(postIDs) == 0 {
		return liked, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	wb := query.NewWhereBuilder()
	wb.AddEquals("account_id", viewerID)
	wb.AddIn("post_id", postIDs)
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx, `SELECT post_id FROM likes `+where, args...)
	recordQuery("select", "likes", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewer likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("failed to scan viewer like: %w", err)
		}
		liked[postID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate viewer likes: %w", err)
	}
	return liked, nil
}

// ListLikers returns the public summaries of accounts that liked the post,
// most recent like first.
func (db *DB) ListLikers(ctx context.Context, postID string) ([]models.PublicAccount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+publicAccountColumns+`
		FROM likes l JOIN accounts a ON a.id = l.account_id
		WHERE l.post_id = $1
		ORDER BY l.created_at DESC, a.id DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	return scanPublicAccounts(rows)
}
