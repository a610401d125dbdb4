// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts authorization decisions by action and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shutterfeed_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"action", "decision"},
	)

	// AuthzDecisionDuration tracks the latency of authorization decisions.
	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shutterfeed_authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

func recordDecision(action string, allowed bool, duration time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(action, decision).Inc()
	AuthzDecisionDuration.Observe(duration.Seconds())
}
