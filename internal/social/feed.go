// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"fmt"

	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/metrics"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// FeedPage is one page of raw feed posts before enrichment.
type FeedPage struct {
	Posts      []models.PostWithOwner
	TotalCount int64
	Request    models.PageRequest

	// Global is true when the viewer follows nobody and the page was drawn
	// from every post.
	Global bool
}

// FeedEngine pages through the posts visible in a viewer's feed.
type FeedEngine struct {
	graph       *GraphReader
	posts       PostStore
	maxPageSize int
}

// NewFeedEngine creates a FeedEngine. maxPageSize caps the page size; values
// below 1 disable the cap.
func NewFeedEngine(graph *GraphReader, posts PostStore, maxPageSize int) *FeedEngine {
	return &FeedEngine{graph: graph, posts: posts, maxPageSize: maxPageSize}
}

// Page returns the requested page of the viewer's feed, newest first.
//
// The scope is recomputed on every call: a viewer who follows at least one
// account sees only posts owned by followees; a viewer who follows nobody
// sees every post. totalCount is computed over the same scope.
func (f *FeedEngine) Page(ctx context.Context, viewerID string, page, size int) (*FeedPage, error) {
	req := models.NewPageRequest(page, size, f.maxPageSize)

	following, err := f.graph.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	scope := database.PostScope{OwnerIDs: following}
	if len(following) == 0 {
		scope = database.PostScope{All: true}
	}

	total, err := f.posts.CountPosts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count feed: %w", err)
	}

	posts := []models.PostWithOwner{}
	if int64(req.Offset()) < total {
		posts, err = f.posts.ListPosts(ctx, scope, req.Limit, req.Offset())
		if err != nil {
			return nil, fmt.Errorf("failed to list feed: %w", err)
		}
	}

	metrics.RecordFeedPage(scope.All, len(posts))
	logging.Ctx(ctx).Debug().
		Bool("global", scope.All).
		Int("following", len(following)).
		Int("page", req.Page).
		Int("posts", len(posts)).
		Int64("total", total).
		Msg("Feed page resolved")

	return &FeedPage{
		Posts:      posts,
		TotalCount: total,
		Request:    req,
		Global:     scope.All,
	}, nil
}
