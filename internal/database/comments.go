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

const enrichedCommentColumns = `c.id, c.post_id, c.text, c.created_at, ` + publicAccountColumns

func scanEnrichedComment(row rowScanner) (models.EnrichedComment, error) {
	var c models.EnrichedComment
	err := row.Scan(&c.ID, &c.PostID, &c.Text, &c.CreatedAt,
		&c.Author.ID, &c.Author.Handle, &c.Author.DisplayName, &c.Author.AvatarURL)
	return c, err
}

// CreateComment inserts a comment, assigning its ID and timestamps.
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, text, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PostID, c.AuthorID, c.Text, c.CreatedAt, c.UpdatedAt)
	recordQuery("insert", "comments", start, err)
	if err != nil {
		return translateInsertError(err, "create comment")
	}
	return nil
}

// GetComment returns the comment or ErrNotFound.
func (db *DB) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c models.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, author_id, text, created_at, updated_at FROM comments WHERE id = $1`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translateScanError(err, "get comment")
	}
	return &c, nil
}

// DeleteComment removes one comment. It does not cascade.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	recordQuery("delete", "comments", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return checkRowsAffected(result)
}

// CountComments counts comments on one post.
func (db *DB) CountComments(ctx context.Context, postID string) (int64, error) {
	return db.countWhere(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID, "count comments")
}

// ListComments returns one page of a post's comments, newest first, each with
// its author's public summary.
func (db *DB) ListComments(ctx context.Context, postID string, limit, offset int) ([]models.EnrichedComment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+enrichedCommentColumns+`
		FROM comments c LEFT JOIN accounts a ON a.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, postID, limit, offset)
	recordQuery("select", "comments", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.EnrichedComment{}
	for rows.Next() {
		c, err := scanEnrichedComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// RecentComments returns up to perPost newest comments for each post id in a
// single windowed query. Each post's slice is newest first; posts without
// comments are absent from the map.
func (db *DB) RecentComments(ctx context.Context, postIDs []string, perPost int) (map[string][]models.EnrichedComment, error) {
	result := make(map[string][]models.EnrichedComment, len(postIDs))
	if len(postIDs) == 0 || perPost < 1 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	wb := query.NewWhereBuilder()
	wb.AddIn("c.post_id", postIDs)
	where, _ := wb.BuildWithPrefix()
	perPostArg := wb.Arg(perPost)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, text, created_at, author_id, author_handle, author_display_name, author_avatar_url
		FROM (
			SELECT c.id, c.post_id, c.text, c.created_at,
				`+publicAccountColumns+` ,
				ROW_NUMBER() OVER (PARTITION BY c.post_id ORDER BY c.created_at DESC, c.id DESC) AS rn
			FROM comments c LEFT JOIN accounts a ON a.id = c.author_id
			`+where+`
		) AS ranked (id, post_id, text, created_at, author_id, author_handle, author_display_name, author_avatar_url, rn)
		WHERE rn <= `+perPostArg+`
		ORDER BY post_id, rn`,
		wb.Args()...)
	recordQuery("select", "comments", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanEnrichedComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent comment: %w", err)
		}
		result[c.PostID] = append(result[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent comments: %w", err)
	}
	return result, nil
}
