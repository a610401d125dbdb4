// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"net/http"

	"github.com/tomtom215/shutterfeed/internal/auth"
)

// LogoutResponse confirms a logout.
type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

// Signup registers an account. The session token is returned in the body and
// set as the session cookie.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var in auth.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		rw.Error(err)
		return
	}

	session, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		rw.Error(err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookieSecure)
	rw.Created(session)
}

// Login opens a session for an email or handle and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		rw.Error(err)
		return
	}

	session, err := h.auth.Login(r.Context(), in)
	if err != nil {
		rw.Error(err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookieSecure)
	rw.Success(session)
}

// Logout revokes the presented token, if any, and clears the cookie. It
// succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.auth.Logout(r.Context(), auth.ExtractToken(r)); err != nil {
		rw.Error(err)
		return
	}

	auth.ClearSessionCookie(w, h.cookieSecure)
	rw.Success(LogoutResponse{LoggedOut: true})
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	me, err := h.auth.Me(r.Context(), auth.ViewerID(r.Context()))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(me)
}
