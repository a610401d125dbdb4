// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// LikePost records the viewer's like. Liking twice is a Conflict.
func (s *Service) LikePost(ctx context.Context, viewerID, postID string) (*models.LikeState, error) {
	state, err := s.likePost(ctx, viewerID, postID)
	return state, recordMutation("like", err)
}

func (s *Service) likePost(ctx context.Context, viewerID, postID string) (*models.LikeState, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	if err := s.store.CreateLike(ctx, viewerID, postID); err != nil {
		if isDuplicate(err) {
			return nil, Conflict("Post already liked")
		}
		return nil, Internal("Failed to like post", err)
	}
	return s.likeState(ctx, postID, true)
}

// UnlikePost removes the viewer's like. Unliking a post that is not liked is
// NotFound.
func (s *Service) UnlikePost(ctx context.Context, viewerID, postID string) (*models.LikeState, error) {
	state, err := s.unlikePost(ctx, viewerID, postID)
	return state, recordMutation("unlike", err)
}

func (s *Service) unlikePost(ctx context.Context, viewerID, postID string) (*models.LikeState, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteLike(ctx, viewerID, postID); err != nil {
		if isNotFound(err) {
			return nil, NotFound("Post not liked")
		}
		return nil, Internal("Failed to unlike post", err)
	}
	return s.likeState(ctx, postID, false)
}

func (s *Service) likeState(ctx context.Context, postID string, liked bool) (*models.LikeState, error) {
	count, err := s.store.CountLikes(ctx, postID)
	if err != nil {
		return nil, Internal("Failed to count likes", err)
	}
	return &models.LikeState{PostID: postID, LikeCount: count, ViewerHasLiked: liked}, nil
}

// ListLikers returns the public summaries of the accounts that liked a post,
// most recent like first.
func (s *Service) ListLikers(ctx context.Context, postID string) ([]models.PublicAccount, error) {
	if err := parseID(postID, "post"); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	likers, err := s.store.ListLikers(ctx, postID)
	if err != nil {
		return nil, Internal("Failed to load likes", err)
	}
	return likers, nil
}
