// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"strings"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// SearchAccounts finds accounts whose handle or display name contains q,
// case-insensitively.
func (s *Service) SearchAccounts(ctx context.Context, q string) ([]models.PublicAccount, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, Validation("Search query is required")
	}

	results, err := s.store.SearchAccounts(ctx, q, s.cfg.SearchLimit)
	if err != nil {
		return nil, Internal("Failed to search users", err)
	}
	return results, nil
}

// GetProfile returns an account's profile as seen by the viewer.
func (s *Service) GetProfile(ctx context.Context, viewerID, accountID string) (*models.Profile, error) {
	if err := parseID(accountID, "user"); err != nil {
		return nil, err
	}

	acct, err := s.store.GetAccount(ctx, accountID)
	if isNotFound(err) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, Internal("Failed to load user", err)
	}

	profile := &models.Profile{
		PublicAccount: models.ToPublicSummary(acct),
		Bio:           acct.Bio,
		CreatedAt:     acct.CreatedAt,
		IsOwnProfile:  viewerID != "" && viewerID == accountID,
	}

	if profile.PostsCount, err = s.store.CountPosts(ctx, userScope(accountID)); err != nil {
		return nil, Internal("Failed to load user", err)
	}
	if profile.FollowersCount, err = s.store.CountFollowers(ctx, accountID); err != nil {
		return nil, Internal("Failed to load user", err)
	}
	if profile.FollowingCount, err = s.store.CountFollowing(ctx, accountID); err != nil {
		return nil, Internal("Failed to load user", err)
	}
	if viewerID != "" && !profile.IsOwnProfile {
		if profile.IsFollowing, err = s.store.IsFollowing(ctx, viewerID, accountID); err != nil {
			return nil, Internal("Failed to load user", err)
		}
	}

	return profile, nil
}
