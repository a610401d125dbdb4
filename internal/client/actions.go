// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package client

import "github.com/tomtom215/shutterfeed/internal/models"

// Action is a state transition of the Store. The set of actions is closed;
// reduce runs with the store lock held and returns the inverse transition
// for actions that can be rolled back, nil otherwise.
type Action interface {
	reduce(s *Store) Action
}

// FeedPageLoaded merges a fetched feed page.
type FeedPageLoaded struct {
	Page models.PostPage
}

func (a FeedPageLoaded) reduce(s *Store) Action {
	s.mergeView(FeedView, a.Page)
	return nil
}

// UserPostsLoaded merges a fetched page of an account's posts.
type UserPostsLoaded struct {
	AccountID string
	Page      models.PostPage
}

func (a UserPostsLoaded) reduce(s *Store) Action {
	s.mergeView(UserView(a.AccountID), a.Page)
	return nil
}

// PostLoaded stores a single fetched post.
type PostLoaded struct {
	Post models.EnrichedPost
}

func (a PostLoaded) reduce(s *Store) Action {
	s.putPost(a.Post)
	return nil
}

// PostCreated stores a new post and puts it at the top of the feed and of
// its owner's list.
type PostCreated struct {
	Post models.EnrichedPost
}

func (a PostCreated) reduce(s *Store) Action {
	s.putPost(a.Post)
	s.prepend(FeedView, a.Post.ID)
	s.prepend(UserView(a.Post.Owner.ID), a.Post.ID)
	if p, ok := s.profiles[a.Post.Owner.ID]; ok {
		p.PostsCount++
		s.profiles[p.ID] = p
	}
	return nil
}

// PostDeleted removes a post from the cache and every view.
type PostDeleted struct {
	PostID string
}

func (a PostDeleted) reduce(s *Store) Action {
	post, ok := s.posts[a.PostID]
	s.removePost(a.PostID)
	if ok {
		if p, cached := s.profiles[post.Owner.ID]; cached && p.PostsCount > 0 {
			p.PostsCount--
			s.profiles[p.ID] = p
		}
	}
	return nil
}

// CommentAdded puts a new comment first in a cached post's comments.
type CommentAdded struct {
	Comment models.EnrichedComment
}

func (a CommentAdded) reduce(s *Store) Action {
	p, ok := s.posts[a.Comment.PostID]
	if !ok {
		return nil
	}
	comments := make([]models.EnrichedComment, 0, len(p.RecentComments)+1)
	comments = append(comments, a.Comment)
	p.RecentComments = append(comments, p.RecentComments...)
	s.posts[p.ID] = p
	return nil
}

// CommentDeleted removes a comment from a cached post's comments.
type CommentDeleted struct {
	PostID    string
	CommentID string
}

func (a CommentDeleted) reduce(s *Store) Action {
	p, ok := s.posts[a.PostID]
	if !ok {
		return nil
	}
	comments := make([]models.EnrichedComment, 0, len(p.RecentComments))
	for _, c := range p.RecentComments {
		if c.ID != a.CommentID {
			comments = append(comments, c)
		}
	}
	p.RecentComments = comments
	s.posts[p.ID] = p
	return nil
}

// ProfileLoaded stores a fetched profile.
type ProfileLoaded struct {
	Profile models.Profile
}

func (a ProfileLoaded) reduce(s *Store) Action {
	s.profiles[a.Profile.ID] = a.Profile
	s.accounts[a.Profile.ID] = a.Profile.PublicAccount
	return nil
}

// AccountsLoaded stores account summaries from a list or search.
type AccountsLoaded struct {
	Accounts []models.PublicAccount
}

func (a AccountsLoaded) reduce(s *Store) Action {
	for _, acct := range a.Accounts {
		s.accounts[acct.ID] = acct
	}
	return nil
}

// LikeDelta sets a post's like flag and moves its count. Setting the flag to
// its current value moves nothing, and the count never goes below zero. The
// returned inverse undoes exactly the change made.
type LikeDelta struct {
	PostID string
	Liked  bool
	Delta  int64
}

func (a LikeDelta) reduce(s *Store) Action {
	p, ok := s.posts[a.PostID]
	if !ok {
		return nil
	}
	prevLiked, prevCount := p.ViewerHasLiked, p.LikeCount
	if p.ViewerHasLiked != a.Liked {
		p.LikeCount = clampCount(p.LikeCount + a.Delta)
	}
	p.ViewerHasLiked = a.Liked
	s.posts[p.ID] = p
	return LikeDelta{PostID: a.PostID, Liked: prevLiked, Delta: prevCount - p.LikeCount}
}

// LikeConfirmed overwrites a post's like state with the server's.
type LikeConfirmed struct {
	State models.LikeState
}

func (a LikeConfirmed) reduce(s *Store) Action {
	p, ok := s.posts[a.State.PostID]
	if !ok {
		return nil
	}
	p.LikeCount = a.State.LikeCount
	p.ViewerHasLiked = a.State.ViewerHasLiked
	s.posts[p.ID] = p
	return nil
}

// FollowDelta sets a profile's following flag and moves its follower count
// under the same rules as LikeDelta.
type FollowDelta struct {
	AccountID string
	Following bool
	Delta     int64
}

func (a FollowDelta) reduce(s *Store) Action {
	p, ok := s.profiles[a.AccountID]
	if !ok {
		return nil
	}
	prevFollowing, prevCount := p.IsFollowing, p.FollowersCount
	if p.IsFollowing != a.Following {
		p.FollowersCount = clampCount(p.FollowersCount + a.Delta)
	}
	p.IsFollowing = a.Following
	s.profiles[p.ID] = p
	return FollowDelta{AccountID: a.AccountID, Following: prevFollowing, Delta: prevCount - p.FollowersCount}
}

// FollowConfirmed overwrites a profile's follow state with the server's.
type FollowConfirmed struct {
	State models.FollowState
}

func (a FollowConfirmed) reduce(s *Store) Action {
	p, ok := s.profiles[a.State.AccountID]
	if !ok {
		return nil
	}
	p.FollowersCount = a.State.FollowersCount
	p.IsFollowing = a.State.IsFollowing
	s.profiles[p.ID] = p
	return nil
}

// Reset clears the whole cache, e.g. on logout.
type Reset struct{}

func (Reset) reduce(s *Store) Action {
	s.posts = make(map[string]models.EnrichedPost)
	s.profiles = make(map[string]models.Profile)
	s.accounts = make(map[string]models.PublicAccount)
	s.views = make(map[string][]string)
	s.pages = make(map[string]ViewState)
	return nil
}

func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
