// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package models defines the entities stored by Shutterfeed and the typed
// projections returned at the API boundary.
//
// Stored entities (Account, Post, Comment, FollowEdge, LikeEdge) are never
// serialized directly when they could leak private fields; handlers return
// the projection types instead (PublicAccount, SelfAccount, Profile,
// EnrichedPost, EnrichedComment).
package models

import "time"

// Account is a registered user.
type Account struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicAccount is the public summary of an account embedded in posts,
// comments and relationship lists.
type PublicAccount struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// ToPublicSummary projects an account onto its public summary.
// The credential hash and email never leave this function.
func ToPublicSummary(a *Account) PublicAccount {
	if a == nil {
		return PublicAccount{}
	}
	return PublicAccount{
		ID:          a.ID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
	}
}

// SelfAccount is what an authenticated account sees about itself.
type SelfAccount struct {
	PublicAccount
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToSelfView projects an account for its owner (signup, login, me).
func ToSelfView(a *Account) SelfAccount {
	return SelfAccount{
		PublicAccount: ToPublicSummary(a),
		Email:         a.Email,
		Bio:           a.Bio,
		CreatedAt:     a.CreatedAt,
	}
}

// Profile is an account page as seen by a viewer.
type Profile struct {
	PublicAccount
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"createdAt"`
	PostsCount     int64     `json:"postsCount"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	IsFollowing    bool      `json:"isFollowing"`
	IsOwnProfile   bool      `json:"isOwnProfile"`
}
