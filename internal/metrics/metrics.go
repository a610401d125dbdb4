// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shutterfeed"

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_query_errors_total",
			Help:      "Total number of database query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_active_requests",
			Help:      "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_rate_limit_hits_total",
			Help:      "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Feed Metrics
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Feed pages served, by candidate scope",
		},
		[]string{"scope"},
	)

	FeedPagePosts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_page_posts",
			Help:      "Number of posts returned per feed page",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	SocialMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "social_mutations_total",
			Help:      "Like, follow and comment mutations by outcome",
		},
		[]string{"action", "outcome"},
	)

	// Auth Metrics
	AuthLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"}, // "success", "invalid", "throttled"
	)

	// Audit Metrics
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Audit events persisted, by type",
		},
		[]string{"type"},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Audit events dropped because the buffer was full",
		},
	)

	// Client Metrics
	ClientRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_rollbacks_total",
			Help:      "Optimistic client mutations rolled back after a failed request",
		},
		[]string{"command"},
	)

	ClientBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_breaker_state",
			Help:      "Client circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordDBQuery records a database query duration and, on failure, its error class.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, errorType(err)).Inc()
	}
}

// errorType buckets errors into a small label set.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordFeedPage records the scope decision and size of one feed page.
func RecordFeedPage(global bool, posts int) {
	scope := "following"
	if global {
		scope = "global"
	}
	FeedRequests.WithLabelValues(scope).Inc()
	FeedPagePosts.Observe(float64(posts))
}

// RecordMutation records a social mutation. outcome is "ok" on success,
// otherwise the error kind ("conflict", "not_found", ...).
func RecordMutation(action, outcome string) {
	SocialMutations.WithLabelValues(action, outcome).Inc()
}

func RecordLogin(result string) {
	AuthLogins.WithLabelValues(result).Inc()
}

func RecordAuditEvent(eventType string) {
	AuditEvents.WithLabelValues(eventType).Inc()
}

func RecordAuditDropped() {
	AuditEventsDropped.Inc()
}

func RecordClientRollback(command string) {
	ClientRollbacks.WithLabelValues(command).Inc()
}

func SetClientBreakerState(name string, state int) {
	ClientBreakerState.WithLabelValues(name).Set(float64(state))
}
