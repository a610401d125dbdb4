// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shutterfeed/internal/auth"
)

// SearchUsers matches the q parameter against handles and display names.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	users, err := h.social.SearchAccounts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(users)
}

// GetProfile returns a user's profile with counts and the viewer relation.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profile, err := h.social.GetProfile(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(profile)
}

// UserPosts returns a user's posts, paginated and enriched like the feed.
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, limit := pageParams(r)

	posts, err := h.social.UserPosts(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "userID"), page, limit)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(posts)
}

// Follow makes the viewer follow a user.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	state, err := h.social.Follow(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(state)
}

// Unfollow removes the viewer's follow of a user.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	state, err := h.social.Unfollow(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(state)
}

// Followers lists the accounts following a user.
func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	accounts, err := h.social.Followers(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(accounts)
}

// Following lists the accounts a user follows.
func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	accounts, err := h.social.Following(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(accounts)
}
