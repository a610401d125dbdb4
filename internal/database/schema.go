// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"fmt"
	"time"
)

// The schema sticks to types and constraints DuckDB and PostgreSQL share.
// There are no foreign keys: post deletion removes dependents explicitly in
// one transaction (see DeletePostCascade) and account deletion does not
// cascade.

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// initialize creates tables, applies pending migrations and creates indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	return db.createIndexes()
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		handle TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		image_url TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	// Composite primary keys are the uniqueness source of truth for edges.
	`CREATE TABLE IF NOT EXISTS follows (
		follower_id TEXT NOT NULL,
		followee_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (follower_id, followee_id)
	)`,

	`CREATE TABLE IF NOT EXISTS likes (
		account_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (account_id, post_id)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at, id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_owner_created ON posts(owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_post ON likes(post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at)`,
}
