// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package audit records destructive and moderation actions.
//
// Events are queued by Logger and written asynchronously to a Store so the
// request that caused them never waits on the audit trail.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// EventTypePostDeleted is recorded when an owner deletes a post.
	EventTypePostDeleted EventType = "post.deleted"

	// EventTypeCommentDeleted is recorded when an author deletes their comment.
	EventTypeCommentDeleted EventType = "comment.deleted"

	// EventTypeCommentModerated is recorded when a post owner removes
	// someone else's comment from their post.
	EventTypeCommentModerated EventType = "comment.moderated"
)

// Target types.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Event is a single audit record.
type Event struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Type       EventType       `json:"type"`
	ActorID    string          `json:"actor_id"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	RequestID  string          `json:"request_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// QueryFilter narrows a Query. Zero fields do not filter.
type QueryFilter struct {
	Types    []EventType
	ActorID  string
	TargetID string
	Since    time.Time
	Limit    int
	Offset   int
}

// Store persists audit events.
type Store interface {
	// Save persists an event.
	Save(ctx context.Context, event *Event) error

	// Query returns events matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
}

// NewMetadata encodes fields as an event metadata document. Encoding
// failures yield nil metadata.
func NewMetadata(fields map[string]any) json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return data
}
