// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package client

import (
	"context"
	"sync"

	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/metrics"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// API is the server surface the Reconciler needs. *Client implements it.
type API interface {
	Feed(ctx context.Context, page, limit int) (*models.PostPage, error)
	UserPosts(ctx context.Context, userID string, page, limit int) (*models.PostPage, error)
	GetPost(ctx context.Context, postID string) (*models.EnrichedPost, error)
	CreatePost(ctx context.Context, imageURL, caption string) (*models.EnrichedPost, error)
	DeletePost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, text string) (*models.EnrichedComment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	Search(ctx context.Context, q string) ([]models.PublicAccount, error)
	Like(ctx context.Context, postID string) (*models.LikeState, error)
	Unlike(ctx context.Context, postID string) (*models.LikeState, error)
	Follow(ctx context.Context, userID string) (*models.FollowState, error)
	Unfollow(ctx context.Context, userID string) (*models.FollowState, error)
}

var _ API = (*Client)(nil)

// Op is an in-flight optimistic mutation.
type Op struct {
	done chan struct{}
	err  error
}

// Done is closed once the mutation is confirmed or rolled back.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the mutation resolves and returns the server error, if
// any. A rolled-back mutation has already been undone in the Store when Wait
// returns its error.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconciler keeps a Store in step with the server.
//
// Fetches merge into the Store after the server answers. Like, unlike, follow
// and unfollow change the Store before the request is sent and are undone if
// it fails. Mutations of the same post or account are sent and resolved in
// the order they were issued; different entities proceed independently.
type Reconciler struct {
	api   API
	store *Store

	issueMu sync.Mutex
	mu      sync.Mutex
	tails   map[string]chan struct{}
}

// NewReconciler creates a reconciler over api. A nil store gets a new one.
func NewReconciler(api API, store *Store) *Reconciler {
	if store == nil {
		store = NewStore()
	}
	return &Reconciler{
		api:   api,
		store: store,
		tails: make(map[string]chan struct{}),
	}
}

// Store returns the reconciled store.
func (r *Reconciler) Store() *Store {
	return r.store
}

// LoadFeed fetches a feed page and merges it.
func (r *Reconciler) LoadFeed(ctx context.Context, page, limit int) (*models.PostPage, error) {
	result, err := r.api.Feed(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(FeedPageLoaded{Page: *result})
	return result, nil
}

// LoadMoreFeed fetches the page after the last one merged. It reports false
// without a request when the server said there is nothing more.
func (r *Reconciler) LoadMoreFeed(ctx context.Context, limit int) (bool, error) {
	state := r.store.ViewState(FeedView)
	if state.Loaded && !state.Pagination.HasMore {
		return false, nil
	}
	next := 1
	if state.Loaded {
		next = state.Pagination.Page + 1
	}
	result, err := r.LoadFeed(ctx, next, limit)
	if err != nil {
		return false, err
	}
	return result.Pagination.HasMore, nil
}

// LoadUserPosts fetches a page of an account's posts and merges it.
func (r *Reconciler) LoadUserPosts(ctx context.Context, userID string, page, limit int) (*models.PostPage, error) {
	result, err := r.api.UserPosts(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(UserPostsLoaded{AccountID: userID, Page: *result})
	return result, nil
}

// LoadPost fetches one post. A post the server no longer has is dropped from
// the cache.
func (r *Reconciler) LoadPost(ctx context.Context, postID string) (*models.EnrichedPost, error) {
	post, err := r.api.GetPost(ctx, postID)
	if err != nil {
		if IsNotFound(err) {
			r.store.Dispatch(PostDeleted{PostID: postID})
		}
		return nil, err
	}
	r.store.Dispatch(PostLoaded{Post: *post})
	return post, nil
}

// LoadProfile fetches a profile and merges it.
func (r *Reconciler) LoadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := r.api.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(ProfileLoaded{Profile: *profile})
	return profile, nil
}

// Search looks up accounts and caches their summaries.
func (r *Reconciler) Search(ctx context.Context, q string) ([]models.PublicAccount, error) {
	accounts, err := r.api.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(AccountsLoaded{Accounts: accounts})
	return accounts, nil
}

// CreatePost publishes a post and puts it at the top of the loaded views.
func (r *Reconciler) CreatePost(ctx context.Context, imageURL, caption string) (*models.EnrichedPost, error) {
	post, err := r.api.CreatePost(ctx, imageURL, caption)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(PostCreated{Post: *post})
	return post, nil
}

// DeletePost deletes a post and removes it from every view once the server
// confirms.
func (r *Reconciler) DeletePost(ctx context.Context, postID string) error {
	if err := r.api.DeletePost(ctx, postID); err != nil {
		return err
	}
	r.store.Dispatch(PostDeleted{PostID: postID})
	return nil
}

// AddComment comments on a post.
func (r *Reconciler) AddComment(ctx context.Context, postID, text string) (*models.EnrichedComment, error) {
	comment, err := r.api.AddComment(ctx, postID, text)
	if err != nil {
		return nil, err
	}
	r.store.Dispatch(CommentAdded{Comment: *comment})
	return comment, nil
}

// DeleteComment deletes a comment.
func (r *Reconciler) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := r.api.DeleteComment(ctx, postID, commentID); err != nil {
		return err
	}
	r.store.Dispatch(CommentDeleted{PostID: postID, CommentID: commentID})
	return nil
}

// Like marks a post liked now and confirms with the server.
func (r *Reconciler) Like(ctx context.Context, postID string) *Op {
	return r.mutate(ctx, "like", "post:"+postID, LikeDelta{PostID: postID, Liked: true, Delta: 1},
		func(ctx context.Context) (Action, error) {
			state, err := r.api.Like(ctx, postID)
			if err != nil {
				return nil, err
			}
			return LikeConfirmed{State: *state}, nil
		})
}

// Unlike marks a post not liked now and confirms with the server.
func (r *Reconciler) Unlike(ctx context.Context, postID string) *Op {
	return r.mutate(ctx, "unlike", "post:"+postID, LikeDelta{PostID: postID, Liked: false, Delta: -1},
		func(ctx context.Context) (Action, error) {
			state, err := r.api.Unlike(ctx, postID)
			if err != nil {
				return nil, err
			}
			return LikeConfirmed{State: *state}, nil
		})
}

// Follow marks an account followed now and confirms with the server.
func (r *Reconciler) Follow(ctx context.Context, userID string) *Op {
	return r.mutate(ctx, "follow", "account:"+userID, FollowDelta{AccountID: userID, Following: true, Delta: 1},
		func(ctx context.Context) (Action, error) {
			state, err := r.api.Follow(ctx, userID)
			if err != nil {
				return nil, err
			}
			return FollowConfirmed{State: *state}, nil
		})
}

// Unfollow marks an account not followed now and confirms with the server.
func (r *Reconciler) Unfollow(ctx context.Context, userID string) *Op {
	return r.mutate(ctx, "unfollow", "account:"+userID, FollowDelta{AccountID: userID, Following: false, Delta: -1},
		func(ctx context.Context) (Action, error) {
			state, err := r.api.Unfollow(ctx, userID)
			if err != nil {
				return nil, err
			}
			return FollowConfirmed{State: *state}, nil
		})
}

// mutate applies forward, then runs call behind every earlier mutation of
// the same key. On success the returned action overwrites the cache with the
// server's values; on failure the inverse of forward is applied.
func (r *Reconciler) mutate(ctx context.Context, command, key string, forward Action, call func(context.Context) (Action, error)) *Op {
	op := &Op{done: make(chan struct{})}

	r.issueMu.Lock()
	inverse := r.store.apply(forward)
	prev, release := r.enqueue(key)
	r.issueMu.Unlock()

	go func() {
		defer close(op.done)
		defer release()

		if prev != nil {
			<-prev
		}

		confirm, err := call(ctx)
		if err != nil {
			r.store.apply(inverse)
			metrics.RecordClientRollback(command)
			logging.Debug().Err(err).Str("command", command).Str("entity", key).Msg("Optimistic mutation rolled back")
			op.err = err
			return
		}
		r.store.apply(confirm)
	}()
	return op
}

// enqueue appends to key's chain. It returns the previous tail, closed when
// the earlier mutation resolves, and a release func for this one.
func (r *Reconciler) enqueue(key string) (<-chan struct{}, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.tails[key]
	tail := make(chan struct{})
	r.tails[key] = tail

	return prev, func() {
		close(tail)
		r.mu.Lock()
		if r.tails[key] == tail {
			delete(r.tails, key)
		}
		r.mu.Unlock()
	}
}
