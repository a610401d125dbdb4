// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"

	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// GraphStore reads the follow graph.
type GraphStore interface {
	FollowingIDs(ctx context.Context, viewerID string) ([]string, error)
}

// PostStore lists posts for a scope.
type PostStore interface {
	ListPosts(ctx context.Context, scope database.PostScope, limit, offset int) ([]models.PostWithOwner, error)
	CountPosts(ctx context.Context, scope database.PostScope) (int64, error)
}

// EnrichmentStore answers the per-page batch queries used by Enricher.
type EnrichmentStore interface {
	LikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error)
	RecentComments(ctx context.Context, postIDs []string, perPost int) (map[string][]models.EnrichedComment, error)
}

// Store is everything Service needs from storage. *database.DB implements it.
type Store interface {
	GraphStore
	PostStore
	EnrichmentStore

	GetAccount(ctx context.Context, id string) (*models.Account, error)
	AccountExists(ctx context.Context, id string) (bool, error)
	SearchAccounts(ctx context.Context, q string, limit int) ([]models.PublicAccount, error)

	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostWithOwner(ctx context.Context, id string) (*models.PostWithOwner, error)
	PostExists(ctx context.Context, id string) (bool, error)
	DeletePostCascade(ctx context.Context, postID string) error

	CreateLike(ctx context.Context, accountID, postID string) error
	DeleteLike(ctx context.Context, accountID, postID string) error
	CountLikes(ctx context.Context, postID string) (int64, error)
	ListLikers(ctx context.Context, postID string) ([]models.PublicAccount, error)

	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	CountComments(ctx context.Context, postID string) (int64, error)
	ListComments(ctx context.Context, postID string, limit, offset int) ([]models.EnrichedComment, error)

	CreateFollow(ctx context.Context, followerID, followeeID string) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	CountFollowers(ctx context.Context, id string) (int64, error)
	CountFollowing(ctx context.Context, id string) (int64, error)
	ListFollowers(ctx context.Context, id string) ([]models.PublicAccount, error)
	ListFollowing(ctx context.Context, id string) ([]models.PublicAccount, error)
}

var _ Store = (*database.DB)(nil)
