// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/social"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (omitted on success)
	Error *APIError `json:"error,omitempty"`

	// Meta contains request metadata
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError is the error member of a failed response.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"durationMs"`
}

// Error codes for API responses
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// internalErrorMessage is the only message clients see for unclassified errors.
const internalErrorMessage = "An internal error occurred"

// ResponseWriter writes enveloped API responses for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.write(http.StatusOK, data)
}

// Created writes a 201 response with data.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.write(http.StatusCreated, data)
}

func (rw *ResponseWriter) write(status int, data interface{}) {
	rw.writeJSON(status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(),
	})
}

// Error classifies err and writes the matching error response. Domain errors
// keep their message; anything unclassified is logged and reported with a
// generic message.
func (rw *ResponseWriter) Error(err error) {
	status, apiErr := classify(err)
	apiErr.RequestID = logging.RequestIDFromContext(rw.r.Context())

	if status >= http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().
			Str("error", sanitizeLogValue(err.Error())).
			Str("path", rw.r.URL.Path).
			Msg("request failed")
	}

	rw.writeJSON(status, APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    rw.meta(),
	})
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

func (rw *ResponseWriter) writeJSON(status int, response APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		rw.w.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.Header().Set("Cache-Control", "no-store")
	rw.w.WriteHeader(status)
	if _, err := rw.w.Write(data); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

// classify maps an error to its HTTP status and client-facing body.
func classify(err error) (int, *APIError) {
	if errors.Is(err, auth.ErrLoginThrottled) {
		return http.StatusTooManyRequests, &APIError{
			Code:    ErrCodeTooManyRequests,
			Message: "Too many login attempts, try again later",
		}
	}

	var domainErr *social.Error
	if !errors.As(err, &domainErr) || domainErr.Kind == social.KindInternal {
		return http.StatusInternalServerError, &APIError{
			Code:    ErrCodeInternal,
			Message: internalErrorMessage,
		}
	}

	apiErr := &APIError{Message: domainErr.Message, Details: domainErr.Details}
	switch domainErr.Kind {
	case social.KindValidation:
		apiErr.Code = ErrCodeValidation
		return http.StatusBadRequest, apiErr
	case social.KindNotFound:
		apiErr.Code = ErrCodeNotFound
		return http.StatusNotFound, apiErr
	case social.KindConflict:
		apiErr.Code = ErrCodeConflict
		return http.StatusConflict, apiErr
	case social.KindForbidden:
		apiErr.Code = ErrCodeForbidden
		return http.StatusForbidden, apiErr
	default:
		apiErr.Code = ErrCodeUnauthorized
		return http.StatusUnauthorized, apiErr
	}
}

// writeError is the auth.ErrorWriter used by the session middleware.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	NewResponseWriter(w, r).Error(err)
}

// sanitizeLogValue escapes control characters so that client-influenced
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
