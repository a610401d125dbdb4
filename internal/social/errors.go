// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"errors"

	"github.com/tomtom215/shutterfeed/internal/validation"
)

// Kind classifies a domain error. The API layer maps each kind to one HTTP
// status and error code.
type Kind int

const (
	// KindInternal is any failure the caller cannot act on. Unclassified
	// errors are treated as internal.
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
)

// String returns the kind as used in metric labels and logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation returns a KindValidation error.
func Validation(msg string) *Error { return newError(KindValidation, msg) }

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error { return newError(KindNotFound, msg) }

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error { return newError(KindConflict, msg) }

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }

// Internal wraps err as a KindInternal error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// FromValidation converts request validation failures into a KindValidation
// error carrying the per-field details.
func FromValidation(ve *validation.RequestValidationError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: ve.Message(),
		Details: ve.Details(),
		Err:     ve,
	}
}

// KindOf returns the kind of err, or KindInternal when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
