// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"context"
	"net/http"
	"time"
)

// healthPingTimeout bounds the database check of the health endpoint.
const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"databaseConnected"`
	Uptime            float64 `json:"uptimeSeconds"`
}

// Health reports database reachability. An unreachable database answers
// 503 so that load balancers take the instance out of rotation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	dbConnected := h.db != nil && h.db.Ping(ctx) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if !dbConnected {
		health.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Data:    health,
			Error:   &APIError{Code: ErrCodeUnavailable, Message: "Database unreachable"},
			Meta:    rw.meta(),
		})
		return
	}
	rw.Success(health)
}
