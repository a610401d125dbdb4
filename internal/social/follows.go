// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// Follow makes the viewer follow accountID.
func (s *Service) Follow(ctx context.Context, viewerID, accountID string) (*models.FollowState, error) {
	state, err := s.follow(ctx, viewerID, accountID)
	return state, recordMutation("follow", err)
}

func (s *Service) follow(ctx context.Context, viewerID, accountID string) (*models.FollowState, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}
	if viewerID == accountID {
		return nil, Validation("Cannot follow yourself")
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	if err := s.store.CreateFollow(ctx, viewerID, accountID); err != nil {
		if isDuplicate(err) {
			return nil, Conflict("Already following this user")
		}
		return nil, Internal("Failed to follow user", err)
	}
	return s.followState(ctx, accountID, true)
}

// Unfollow removes the viewer's follow of accountID.
func (s *Service) Unfollow(ctx context.Context, viewerID, accountID string) (*models.FollowState, error) {
	state, err := s.unfollow(ctx, viewerID, accountID)
	return state, recordMutation("unfollow", err)
}

func (s *Service) unfollow(ctx context.Context, viewerID, accountID string) (*models.FollowState, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteFollow(ctx, viewerID, accountID); err != nil {
		if isNotFound(err) {
			return nil, NotFound("Not following this user")
		}
		return nil, Internal("Failed to unfollow user", err)
	}
	return s.followState(ctx, accountID, false)
}

func (s *Service) followState(ctx context.Context, accountID string, following bool) (*models.FollowState, error) {
	count, err := s.store.CountFollowers(ctx, accountID)
	if err != nil {
		return nil, Internal("Failed to count followers", err)
	}
	return &models.FollowState{AccountID: accountID, FollowersCount: count, IsFollowing: following}, nil
}

// Followers returns the accounts following accountID, newest first.
func (s *Service) Followers(ctx context.Context, accountID string) ([]models.PublicAccount, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	list, err := s.store.ListFollowers(ctx, accountID)
	if err != nil {
		return nil, Internal("Failed to load followers", err)
	}
	return list, nil
}

// Following returns the accounts accountID follows, newest first.
func (s *Service) Following(ctx context.Context, accountID string) ([]models.PublicAccount, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	list, err := s.store.ListFollowing(ctx, accountID)
	if err != nil {
		return nil, Internal("Failed to load following", err)
	}
	return list, nil
}
