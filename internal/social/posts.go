// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"strings"

	"github.com/tomtom215/shutterfeed/internal/audit"
	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/models"
	"github.com/tomtom215/shutterfeed/internal/validation"
)

// CreatePostInput is the body of a new post.
type CreatePostInput struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
	Caption  string `json:"caption" validate:"max=2000"`
}

// CreatePost publishes a post owned by the viewer and returns it enriched.
func (s *Service) CreatePost(ctx context.Context, viewerID string, in CreatePostInput) (*models.EnrichedPost, error) {
	id, err := s.createPost(ctx, viewerID, in)
	if recordMutation("post.create", err) != nil {
		return nil, err
	}
	return s.GetPost(ctx, viewerID, id)
}

func (s *Service) createPost(ctx context.Context, viewerID string, in CreatePostInput) (string, error) {
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return "", FromValidation(verr)
	}

	post := &models.Post{
		OwnerID:  viewerID,
		ImageURL: in.ImageURL,
		Caption:  in.Caption,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return "", Internal("Failed to create post", err)
	}

	logging.Ctx(ctx).Info().Str("post_id", post.ID).Msg("Post created")
	return post.ID, nil
}

// GetPost returns a single post with up to DetailCommentLimit recent comments.
func (s *Service) GetPost(ctx context.Context, viewerID, postID string) (*models.EnrichedPost, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}

	post, err := s.store.GetPostWithOwner(ctx, postID)
	if isNotFound(err) {
		return nil, NotFound("Post not found")
	}
	if err != nil {
		return nil, Internal("Failed to load post", err)
	}

	enriched, err := s.enricher.Enrich(ctx, viewerID, []models.PostWithOwner{*post}, s.cfg.DetailCommentLimit)
	if err != nil {
		return nil, Internal("Failed to load post", err)
	}
	return &enriched[0], nil
}

// DeletePost removes a post together with its likes and comments. Only the
// owner may delete a post.
func (s *Service) DeletePost(ctx context.Context, viewerID, postID string) error {
	return recordMutation("post.delete", s.deletePost(ctx, viewerID, postID))
}

func (s *Service) deletePost(ctx context.Context, viewerID, postID string) error {
	if err := parseID(postID, "post"); err != nil {
		return err
	}

	post, err := s.store.GetPost(ctx, postID)
	if isNotFound(err) {
		return NotFound("Post not found")
	}
	if err != nil {
		return Internal("Failed to load post", err)
	}

	allowed, err := s.enforcer.CanDeletePost(viewerID, post.OwnerID)
	if err != nil {
		return Internal("Failed to authorize request", err)
	}
	if !allowed {
		return Forbidden("Not authorized to delete this post")
	}

	if err := s.store.DeletePostCascade(ctx, postID); err != nil {
		if isNotFound(err) {
			return NotFound("Post not found")
		}
		return Internal("Failed to delete post", err)
	}

	s.audit.Log(ctx, &audit.Event{
		Type:       audit.EventTypePostDeleted,
		ActorID:    viewerID,
		TargetType: audit.TargetPost,
		TargetID:   postID,
	})
	logging.Ctx(ctx).Info().Str("post_id", postID).Msg("Post deleted")
	return nil
}

// UserPosts returns a page of the account's posts, newest first.
func (s *Service) UserPosts(ctx context.Context, viewerID, accountID string, page, limit int) (*models.PostPage, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	req := s.pageRequest(page, limit, s.cfg.DefaultPageSize)
	scope := userScope(accountID)

	total, err := s.store.CountPosts(ctx, scope)
	if err != nil {
		return nil, Internal("Failed to load posts", err)
	}

	rows := []models.PostWithOwner{}
	if int64(req.Offset()) < total {
		rows, err = s.store.ListPosts(ctx, scope, req.Limit, req.Offset())
		if err != nil {
			return nil, Internal("Failed to load posts", err)
		}
	}

	posts, err := s.enricher.Enrich(ctx, viewerID, rows, s.cfg.FeedCommentLimit)
	if err != nil {
		return nil, Internal("Failed to load posts", err)
	}

	return &models.PostPage{
		Posts:      posts,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

func userScope(accountID string) database.PostScope {
	return database.PostScope{OwnerIDs: []string{accountID}}
}
