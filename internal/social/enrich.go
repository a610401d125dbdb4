// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"fmt"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// Enricher adds like counts, the viewer's like state and recent comments to a
// page of posts.
type Enricher struct {
	store EnrichmentStore
}

// NewEnricher creates an Enricher over store.
func NewEnricher(store EnrichmentStore) *Enricher {
	return &Enricher{store: store}
}

// Enrich returns the posts in their original order with aggregate and
// viewer-dependent fields filled. It issues at most three queries for the
// whole page: grouped like counts, the viewer's likes (skipped without a
// viewer) and the newest commentLimit comments per post (skipped when
// commentLimit < 1).
func (e *Enricher) Enrich(ctx context.Context, viewerID string, posts []models.PostWithOwner, commentLimit int) ([]models.EnrichedPost, error) {
	out := make([]models.EnrichedPost, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	counts, err := e.store.LikeCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load like counts: %w", err)
	}

	liked := map[string]bool{}
	if viewerID != "" {
		liked, err = e.store.LikedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load viewer likes: %w", err)
		}
	}

	comments := map[string][]models.EnrichedComment{}
	if commentLimit > 0 {
		comments, err = e.store.RecentComments(ctx, ids, commentLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent comments: %w", err)
		}
	}

	for i := range posts {
		p := &posts[i]
		recent := comments[p.ID]
		if recent == nil {
			recent = []models.EnrichedComment{}
		}
		out = append(out, models.EnrichedPost{
			ID:             p.ID,
			Owner:          p.Owner,
			ImageURL:       p.ImageURL,
			Caption:        p.Caption,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
			LikeCount:      counts[p.ID],
			ViewerHasLiked: liked[p.ID],
			RecentComments: recent,
		})
	}
	return out, nil
}
