// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"fmt"
)

// GraphReader resolves who a viewer follows.
type GraphReader struct {
	store GraphStore
}

// NewGraphReader creates a GraphReader over store.
func NewGraphReader(store GraphStore) *GraphReader {
	return &GraphReader{store: store}
}

// FollowingIDs returns the ids of the accounts viewerID follows, in no
// particular order. An empty viewer follows nobody.
func (g *GraphReader) FollowingIDs(ctx context.Context, viewerID string) ([]string, error) {
	if viewerID == "" {
		return []string{}, nil
	}
	ids, err := g.store.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve following: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
