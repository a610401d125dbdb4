// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/metrics"
)

const saveTimeout = 5 * time.Second

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool

	// BufferSize is the size of the async write buffer.
	BufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BufferSize: 1000,
	}
}

// Logger queues audit events and writes them to a Store from Serve.
//
// Log never blocks: when the buffer is full the event is dropped and counted.
// Logger implements suture.Service, so the writer runs under the supervisor
// and drains the buffer on shutdown.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	size := config.BufferSize
	if size <= 0 {
		size = DefaultConfig().BufferSize
	}

	return &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, size),
	}
}

// Log records an audit event. The request id on ctx is attached when the
// event does not carry one.
func (l *Logger) Log(ctx context.Context, event *Event) {
	if l == nil || !l.config.Enabled {
		return
	}

	if event.ID == "" {
		event.ID = generateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = logging.RequestIDFromContext(ctx)
	}

	select {
	case l.eventChan <- event:
	default:
		metrics.RecordAuditDropped()
		logging.Ctx(ctx).Warn().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("Audit event buffer full, dropping event")
	}
}

// Pending returns the number of queued events not yet written.
func (l *Logger) Pending() int {
	return len(l.eventChan)
}

// Serve writes queued events until ctx is canceled, then drains the buffer.
func (l *Logger) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// String identifies the service in supervisor logs.
func (l *Logger) String() string {
	return "audit-logger"
}

func (l *Logger) drain() {
	for {
		select {
		case event := <-l.eventChan:
			l.writeEvent(event)
		default:
			return
		}
	}
}

// writeEvent persists an event to the store.
func (l *Logger) writeEvent(event *Event) {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("Failed to save audit event")
		return
	}
	metrics.RecordAuditEvent(string(event.Type))
}

func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
