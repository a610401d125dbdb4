// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/social"
)

// maxBodyBytes bounds request bodies. Image references may be data URLs.
const maxBodyBytes = 8 << 20

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_health.go: health endpoint
//   - handlers_posts.go: feed, posts, likes and comments
//   - handlers_users.go: profiles, search and follows
//   - handlers_auth.go: signup, login, logout and me
type Handler struct {
	social       *social.Service
	auth         *auth.Service
	db           Pinger
	cookieSecure bool
	version      string
	startTime    time.Time
}

// HandlerConfig holds the dependencies of NewHandler.
type HandlerConfig struct {
	Social       *social.Service
	Auth         *auth.Service
	DB           Pinger
	CookieSecure bool
	Version      string
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		social:       cfg.Social,
		auth:         cfg.Auth,
		db:           cfg.DB,
		cookieSecure: cfg.CookieSecure,
		version:      version,
		startTime:    time.Now(),
	}
}

// decodeJSON reads a JSON request body into v. Any malformed or oversized
// body is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return social.Validation("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return social.Validation("Request body too large")
		}
		return social.Validation("Invalid JSON body")
	}
	return nil
}

// getIntParam extracts an integer query parameter. Missing or malformed
// values yield defaultValue; range clamping is left to the service.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// pageParams reads page and limit. A zero limit selects the service default.
func pageParams(r *http.Request) (page, limit int) {
	return getIntParam(r, "page", 1), getIntParam(r, "limit", 0)
}
