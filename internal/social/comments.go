// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"strings"

	"github.com/tomtom215/shutterfeed/internal/audit"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/models"
	"github.com/tomtom215/shutterfeed/internal/validation"
)

// CreateCommentInput is the body of a new comment.
type CreateCommentInput struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

// ListComments returns a page of a post's comments, newest first.
func (s *Service) ListComments(ctx context.Context, postID string, page, limit int) (*models.CommentPage, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	req := s.pageRequest(page, limit, s.cfg.DefaultCommentSize)

	total, err := s.store.CountComments(ctx, postID)
	if err != nil {
		return nil, Internal("Failed to load comments", err)
	}

	comments := []models.EnrichedComment{}
	if int64(req.Offset()) < total {
		comments, err = s.store.ListComments(ctx, postID, req.Limit, req.Offset())
		if err != nil {
			return nil, Internal("Failed to load comments", err)
		}
	}

	return &models.CommentPage{
		Comments:   comments,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// CreateComment adds the viewer's comment to a post.
func (s *Service) CreateComment(ctx context.Context, viewerID, postID string, in CreateCommentInput) (*models.EnrichedComment, error) {
	c, err := s.createComment(ctx, viewerID, postID, in)
	return c, recordMutation("comment.create", err)
}

func (s *Service) createComment(ctx context.Context, viewerID, postID string, in CreateCommentInput) (*models.EnrichedComment, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, FromValidation(verr)
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	author, err := s.store.GetAccount(ctx, viewerID)
	if isNotFound(err) {
		return nil, Unauthorized("Account no longer exists")
	}
	if err != nil {
		return nil, Internal("Failed to create comment", err)
	}

	comment := &models.Comment{PostID: postID, AuthorID: viewerID, Text: in.Text}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, Internal("Failed to create comment", err)
	}

	return &models.EnrichedComment{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Author:    models.ToPublicSummary(author),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// DeleteComment removes a comment. The comment's author and the owner of the
// post it belongs to may delete it; anyone else is Forbidden.
func (s *Service) DeleteComment(ctx context.Context, viewerID, postID, commentID string) error {
	return recordMutation("comment.delete", s.deleteComment(ctx, viewerID, postID, commentID))
}

func (s *Service) deleteComment(ctx context.Context, viewerID, postID, commentID string) error {
	if err := parseID(postID, "post"); err != nil {
		return err
	}
	if err := parseID(commentID, "comment"); err != nil {
		return err
	}

	comment, err := s.store.GetComment(ctx, commentID)
	if isNotFound(err) || (err == nil && comment.PostID != postID) {
		return NotFound("Comment not found")
	}
	if err != nil {
		return Internal("Failed to load comment", err)
	}

	post, err := s.store.GetPost(ctx, postID)
	if isNotFound(err) {
		return NotFound("Post not found")
	}
	if err != nil {
		return Internal("Failed to load post", err)
	}

	allowed, err := s.enforcer.CanDeleteComment(viewerID, comment.AuthorID, post.OwnerID)
	if err != nil {
		return Internal("Failed to authorize request", err)
	}
	if !allowed {
		return Forbidden("Not authorized to delete this comment")
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		if isNotFound(err) {
			return NotFound("Comment not found")
		}
		return Internal("Failed to delete comment", err)
	}

	event := &audit.Event{
		Type:       audit.EventTypeCommentDeleted,
		ActorID:    viewerID,
		TargetType: audit.TargetComment,
		TargetID:   commentID,
		Metadata:   audit.NewMetadata(map[string]any{"post_id": postID}),
	}
	if viewerID != comment.AuthorID {
		event.Type = audit.EventTypeCommentModerated
		event.Metadata = audit.NewMetadata(map[string]any{
			"post_id":           postID,
			"comment_author_id": comment.AuthorID,
		})
	}
	s.audit.Log(ctx, event)

	logging.Ctx(ctx).Info().
		Str("comment_id", commentID).
		Str("event_type", string(event.Type)).
		Msg("Comment deleted")
	return nil
}
