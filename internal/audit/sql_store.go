// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/shutterfeed/internal/database/query"
)

// SQLStore implements Store on the application's SQL database. The statements
// use numbered placeholders and portable types, so the same store runs on
// DuckDB and PostgreSQL.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store over db. Call CreateTable before use.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateTable creates the audit_events table and its indexes if missing.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			request_id TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_events(actor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_events(target_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create audit table: %w", err)
		}
	}
	return nil
}

// Save persists an audit event.
func (s *SQLStore) Save(ctx context.Context, event *Event) error {
	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}
	var requestID *string
	if event.RequestID != "" {
		requestID = &event.RequestID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, timestamp, type, actor_id, target_type, target_id, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), event.ActorID,
		event.TargetType, event.TargetID, requestID, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query retrieves events matching the filter, newest first.
func (s *SQLStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	wb := query.NewWhereBuilder()
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		wb.AddIn("type", types)
	}
	if filter.ActorID != "" {
		wb.AddEquals("actor_id", filter.ActorID)
	}
	if filter.TargetID != "" {
		wb.AddEquals("target_id", filter.TargetID)
	}
	if !filter.Since.IsZero() {
		wb.AddClause("timestamp >= ?", filter.Since.UTC())
	}

	where, _ := wb.Build()
	q := `SELECT id, timestamp, type, actor_id, target_type, target_id,
			COALESCE(request_id, ''), COALESCE(metadata, '')
		FROM audit_events WHERE ` + where + ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		q += " LIMIT " + wb.Arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + wb.Arg(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e         Event
			eventType string
			metadata  string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &eventType, &e.ActorID,
			&e.TargetType, &e.TargetID, &e.RequestID, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Type = EventType(eventType)
		if metadata != "" {
			e.Metadata = []byte(metadata)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
