// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package models

import "time"

// Caption and comment length limits, in characters.
const (
	MaxCaptionLength     = 2000
	MaxCommentLength     = 1000
	MaxDisplayNameLength = 100
	MaxBioLength         = 500
)

// Post is a photo shared by its owner.
type Post struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	ImageURL  string    `json:"imageUrl"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a text reply attached to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EnrichedComment is a comment carrying its author's public summary.
type EnrichedComment struct {
	ID        string        `json:"id"`
	PostID    string        `json:"postId"`
	Author    PublicAccount `json:"author"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

// EnrichedPost is the uniform shape returned by every post listing: the post,
// its owner, and the viewer-dependent and aggregate fields computed per page.
type EnrichedPost struct {
	ID             string            `json:"id"`
	Owner          PublicAccount     `json:"owner"`
	ImageURL       string            `json:"imageUrl"`
	Caption        string            `json:"caption"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	LikeCount      int64             `json:"likeCount"`
	ViewerHasLiked bool              `json:"viewerHasLiked"`
	RecentComments []EnrichedComment `json:"recentComments"`
}

// PostWithOwner is a post row joined with its owner's public summary.
type PostWithOwner struct {
	Post
	Owner PublicAccount
}
