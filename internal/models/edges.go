// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package models

import "time"

// FollowEdge is a directed (follower -> followee) relationship.
type FollowEdge struct {
	FollowerID string    `json:"followerId"`
	FolloweeID string    `json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LikeEdge records that an account liked a post.
type LikeEdge struct {
	AccountID string    `json:"accountId"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeState is the authoritative like state of a post after a like mutation.
type LikeState struct {
	PostID         string `json:"postId"`
	LikeCount      int64  `json:"likeCount"`
	ViewerHasLiked bool   `json:"viewerHasLiked"`
}

// FollowState is the authoritative relationship state after a follow mutation.
type FollowState struct {
	AccountID      string `json:"accountId"`
	FollowersCount int64  `json:"followersCount"`
	IsFollowing    bool   `json:"isFollowing"`
}
