// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/shutterfeed/internal/database/query"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// PostScope selects the candidate posts of a listing. All selects every post;
// otherwise only posts owned by OwnerIDs are selected, and an empty OwnerIDs
// selects nothing.
type PostScope struct {
	All      bool
	OwnerIDs []string
}

const postWithOwnerColumns = `p.id, p.owner_id, p.image_url, p.caption, p.created_at, p.updated_at, ` + publicAccountColumns

func (s PostScope) where(wb *query.WhereBuilder) {
	if !s.All {
		wb.AddIn("p.owner_id", s.OwnerIDs)
	}
}

func scanPostWithOwner(row rowScanner) (models.PostWithOwner, error) {
	var p models.PostWithOwner
	err := row.Scan(&p.ID, &p.OwnerID, &p.ImageURL, &p.Caption, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.ID, &p.Owner.Handle, &p.Owner.DisplayName, &p.Owner.AvatarURL)
	if err == nil && p.Owner.ID == "" {
		p.Owner.ID = p.OwnerID
	}
	return p, err
}

// CreatePost inserts a post, assigning its ID and timestamps.
func (db *DB) CreatePost(ctx context.Context, p *models.Post) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	p.ID = newID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, owner_id, image_url, caption, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.OwnerID, p.ImageURL, p.Caption, p.CreatedAt, p.UpdatedAt)
	recordQuery("insert", "posts", start, err)
	if err != nil {
		return translateInsertError(err, "create post")
	}
	return nil
}

// GetPost returns the post or ErrNotFound.
func (db *DB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var p models.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, image_url, caption, created_at, updated_at FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.OwnerID, &p.ImageURL, &p.Caption, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateScanError(err, "get post")
	}
	return &p, nil
}

// GetPostWithOwner returns the post joined with its owner's public summary.
func (db *DB) GetPostWithOwner(ctx context.Context, id string) (*models.PostWithOwner, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postWithOwnerColumns+` FROM posts p LEFT JOIN accounts a ON a.id = p.owner_id WHERE p.id = $1`, id)
	p, err := scanPostWithOwner(row)
	if err != nil {
		return nil, translateScanError(err, "get post")
	}
	return &p, nil
}

// PostExists reports whether a post with the id exists.
func (db *DB) PostExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE id = $1`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return n > 0, nil
}

// ListPosts returns one page of the scope ordered newest first, with id as
// the tiebreak for equal timestamps.
func (db *DB) ListPosts(ctx context.Context, scope PostScope, limit, offset int) ([]models.PostWithOwner, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	wb := query.NewWhereBuilder()
	scope.where(wb)
	where, _ := wb.BuildWithPrefix()
	limitArg := wb.Arg(limit)
	offsetArg := wb.Arg(offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postWithOwnerColumns+`
		FROM posts p LEFT JOIN accounts a ON a.id = p.owner_id
		`+where+`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT `+limitArg+` OFFSET `+offsetArg,
		wb.Args()...)
	recordQuery("select", "posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.PostWithOwner{}
	for rows.Next() {
		p, err := scanPostWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// CountPosts counts the posts in scope.
func (db *DB) CountPosts(ctx context.Context, scope PostScope) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder()
	scope.where(wb)
	where, args := wb.BuildWithPrefix()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// DeletePostCascade removes a post together with its likes and comments in a
// single transaction. Returns ErrNotFound when the post does not exist, in
// which case nothing is removed.
func (db *DB) DeletePostCascade(ctx context.Context, postID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return checkRowsAffected(result)
	})
	recordQuery("delete", "posts", start, err)
	return err
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
