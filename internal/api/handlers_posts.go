// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/social"
)

// DeletedResponse confirms a deletion.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Feed returns the viewer's paginated feed. page defaults to 1 and limit to
// the configured page size.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, limit := pageParams(r)

	result, err := h.social.Feed(r.Context(), auth.ViewerID(r.Context()), page, limit)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(result)
}

// CreatePost publishes a post owned by the viewer.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var in social.CreatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		rw.Error(err)
		return
	}

	post, err := h.social.CreatePost(r.Context(), auth.ViewerID(r.Context()), in)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(post)
}

// GetPost returns one enriched post with its detail comment window.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	post, err := h.social.GetPost(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(post)
}

// DeletePost removes the viewer's post with its likes and comments.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	postID := chi.URLParam(r, "postID")

	if err := h.social.DeletePost(r.Context(), auth.ViewerID(r.Context()), postID); err != nil {
		rw.Error(err)
		return
	}
	rw.Success(DeletedResponse{ID: postID, Deleted: true})
}

// LikePost likes a post as the viewer.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	state, err := h.social.LikePost(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(state)
}

// UnlikePost removes the viewer's like.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	state, err := h.social.UnlikePost(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(state)
}

// ListLikers returns the public summaries of a post's likers.
func (h *Handler) ListLikers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	likers, err := h.social.ListLikers(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(likers)
}

// ListComments returns a paginated list of a post's comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, limit := pageParams(r)

	comments, err := h.social.ListComments(r.Context(), chi.URLParam(r, "postID"), page, limit)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(comments)
}

// CreateComment adds a comment by the viewer.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var in social.CreateCommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		rw.Error(err)
		return
	}

	comment, err := h.social.CreateComment(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "postID"), in)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Created(comment)
}

// DeleteComment removes a comment. Its author and the post owner may do so.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	commentID := chi.URLParam(r, "commentID")

	err := h.social.DeleteComment(r.Context(), auth.ViewerID(r.Context()), chi.URLParam(r, "postID"), commentID)
	if err != nil {
		rw.Error(err)
		return
	}
	rw.Success(DeletedResponse{ID: commentID, Deleted: true})
}
