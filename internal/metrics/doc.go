// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed by the API router at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP:
  - shutterfeed_api_requests_total (method, endpoint, status_code)
  - shutterfeed_api_request_duration_seconds (method, endpoint)
  - shutterfeed_api_active_requests
  - shutterfeed_api_rate_limit_hits_total (endpoint)

Database:
  - shutterfeed_db_query_duration_seconds (operation, table)
  - shutterfeed_db_query_errors_total (operation, table, error_type)

Feed and social graph:
  - shutterfeed_feed_requests_total (scope): "following" or "global"
  - shutterfeed_feed_page_posts: posts returned per feed page
  - shutterfeed_social_mutations_total (action, outcome)

Auth and audit:
  - shutterfeed_auth_logins_total (result)
  - shutterfeed_audit_events_total (type)
  - shutterfeed_audit_events_dropped_total

Client:
  - shutterfeed_client_rollbacks_total (command)
  - shutterfeed_client_breaker_state (name): 0 closed, 1 half-open, 2 open

Endpoint labels are chi route patterns ("/api/posts/{postID}"), never raw
paths, to keep label cardinality bounded.
*/
package metrics
