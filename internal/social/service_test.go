// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package social

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/shutterfeed/internal/audit"
	"github.com/tomtom215/shutterfeed/internal/authz"
	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// testDBSemaphore serializes DuckDB tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

type testEnv struct {
	svc        *Service
	db         *database.DB
	auditStore *audit.MemoryStore
	auditLog   *audit.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Driver:    config.DriverDuckDB,
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}

	store := audit.NewMemoryStore(100)
	logger := audit.NewLogger(store, &audit.Config{Enabled: true, BufferSize: 100})

	return &testEnv{
		svc:        NewService(db, enforcer, logger, DefaultConfig()),
		db:         db,
		auditStore: store,
		auditLog:   logger,
	}
}

func (e *testEnv) account(t *testing.T, handle string) *models.Account {
	t.Helper()
	a := &models.Account{
		Handle:       handle,
		Email:        handle + "@example.com",
		PasswordHash: "hash",
		DisplayName:  strings.ToUpper(handle),
	}
	if err := e.db.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", handle, err)
	}
	return a
}

func (e *testEnv) post(t *testing.T, owner *models.Account, caption string) *models.EnrichedPost {
	t.Helper()
	p, err := e.svc.CreatePost(context.Background(), owner.ID, CreatePostInput{
		ImageURL: "https://img.test/" + owner.Handle + ".jpg",
		Caption:  caption,
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	return p
}

func (e *testEnv) follow(t *testing.T, follower, followee *models.Account) {
	t.Helper()
	if _, err := e.svc.Follow(context.Background(), follower.ID, followee.ID); err != nil {
		t.Fatalf("Follow(%s -> %s) error = %v", follower.Handle, followee.Handle, err)
	}
}

// auditEvents drains the audit buffer and returns everything recorded.
func (e *testEnv) auditEvents(t *testing.T) []audit.Event {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//nolint:errcheck // canceled context
	e.auditLog.Serve(ctx)

	events, err := e.auditStore.Query(context.Background(), audit.QueryFilter{})
	if err != nil {
		t.Fatalf("audit Query() error = %v", err)
	}
	return events
}

func feedIDs(t *testing.T, svc *Service, viewerID string) []string {
	t.Helper()
	page, err := svc.Feed(context.Background(), viewerID, 1, 50)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	ids := make([]string, len(page.Posts))
	for i, p := range page.Posts {
		ids[i] = p.ID
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func wantKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error %q, got nil", kind, msg)
	}
	if !IsKind(err, kind) {
		t.Fatalf("expected kind %s, got %s (%v)", kind, KindOf(err), err)
	}
	if msg != "" {
		var e *Error
		if errors.As(err, &e) && e.Message != msg {
			t.Errorf("message = %q, want %q", e.Message, msg)
		}
	}
}

func TestFeedScenario_FallbackAndFollowScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	x := env.account(t, "xavier")
	y := env.account(t, "yolanda")
	z := env.account(t, "zed")
	w := env.account(t, "wanda")
	other := env.account(t, "other")

	// Caption boundary.
	if _, err := env.svc.CreatePost(ctx, x.ID, CreatePostInput{
		ImageURL: "https://img.test/long.jpg",
		Caption:  strings.Repeat("c", models.MaxCaptionLength+1),
	}); !IsKind(err, KindValidation) {
		t.Fatalf("2001-char caption: expected validation error, got %v", err)
	}
	env.post(t, x, strings.Repeat("c", models.MaxCaptionLength))

	p := env.post(t, x, "hello")
	if p.Caption != "hello" || p.Owner.Handle != "xavier" {
		t.Fatalf("unexpected post %+v", p)
	}

	// Y follows nobody: global fallback.
	if !contains(feedIDs(t, env.svc, y.ID), p.ID) {
		t.Error("P missing from Y's fallback feed")
	}

	// Z follows X.
	env.follow(t, z, x)
	if !contains(feedIDs(t, env.svc, z.ID), p.ID) {
		t.Error("P missing from Z's feed")
	}

	// W follows nobody: fallback.
	if !contains(feedIDs(t, env.svc, w.ID), p.ID) {
		t.Error("P missing from W's fallback feed")
	}

	// W follows an unrelated account: P disappears.
	env.follow(t, w, other)
	if contains(feedIDs(t, env.svc, w.ID), p.ID) {
		t.Error("P should not appear once W follows an unrelated account")
	}

	// W follows X as well: P is back.
	env.follow(t, w, x)
	if !contains(feedIDs(t, env.svc, w.ID), p.ID) {
		t.Error("P missing once W follows X")
	}
}

func TestFeed_FollowScopeOnlyFolloweePosts(t *testing.T) {
	env := newTestEnv(t)

	viewer := env.account(t, "viewer")
	followed := env.account(t, "followed")
	stranger := env.account(t, "stranger")

	env.post(t, followed, "a")
	env.post(t, stranger, "b")
	env.post(t, viewer, "own post")
	env.follow(t, viewer, followed)

	page, err := env.svc.Feed(context.Background(), viewer.ID, 1, 10)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if page.Pagination.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", page.Pagination.TotalCount)
	}
	for _, p := range page.Posts {
		if p.Owner.ID != followed.ID {
			t.Errorf("feed contains post owned by %s", p.Owner.Handle)
		}
	}
}

func TestFeed_PaginationAndOrder(t *testing.T) {
	env := newTestEnv(t)
	owner := env.account(t, "owner")

	var created []string
	for i := 0; i < 5; i++ {
		created = append(created, env.post(t, owner, "post").ID)
	}

	all := []string{created[4], created[3], created[2], created[1], created[0]}

	// A zero limit means "not supplied" and uses the default page size.
	tests := []struct {
		page, limit    int
		wantIDs        []string
		wantTotalPages int
		wantHasMore    bool
	}{
		{1, 2, all[0:2], 3, true},
		{2, 2, all[2:4], 3, true},
		{3, 2, all[4:], 3, false},
		{4, 2, []string{}, 3, false},
		{1, 0, all, 1, false},
		{0, -5, all[0:1], 5, true},
	}

	for _, tt := range tests {
		page, err := env.svc.Feed(context.Background(), owner.ID, tt.page, tt.limit)
		if err != nil {
			t.Fatalf("Feed(%d, %d) error = %v", tt.page, tt.limit, err)
		}
		if len(page.Posts) != len(tt.wantIDs) {
			t.Fatalf("Feed(%d, %d) returned %d posts, want %d", tt.page, tt.limit, len(page.Posts), len(tt.wantIDs))
		}
		for i, id := range tt.wantIDs {
			if page.Posts[i].ID != id {
				t.Errorf("Feed(%d, %d)[%d] = %s, want %s", tt.page, tt.limit, i, page.Posts[i].ID, id)
			}
		}
		if page.Pagination.TotalCount != 5 {
			t.Errorf("TotalCount = %d, want 5", page.Pagination.TotalCount)
		}
		if page.Pagination.TotalPages != tt.wantTotalPages || page.Pagination.HasMore != tt.wantHasMore {
			t.Errorf("Feed(%d, %d) pagination = %+v", tt.page, tt.limit, page.Pagination)
		}
	}
}

func TestFeed_Empty(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.account(t, "lonely")

	page, err := env.svc.Feed(context.Background(), viewer.ID, 1, 10)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(page.Posts) != 0 || page.Posts == nil {
		t.Errorf("Posts = %#v, want empty non-nil slice", page.Posts)
	}
	if page.Pagination.TotalPages != 0 || page.Pagination.HasMore {
		t.Errorf("Pagination = %+v", page.Pagination)
	}
}

func TestListings_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.account(t, "owner")
	p := env.post(t, owner, "only")

	for _, page := range []int{math.MaxInt, math.MaxInt / 5} {
		feed, err := env.svc.Feed(ctx, owner.ID, page, 10)
		if err != nil {
			t.Fatalf("Feed(page=%d) error = %v", page, err)
		}
		if len(feed.Posts) != 0 || feed.Pagination.HasMore || feed.Pagination.TotalCount != 1 {
			t.Errorf("Feed(page=%d) = %d posts, pagination %+v", page, len(feed.Posts), feed.Pagination)
		}

		posts, err := env.svc.UserPosts(ctx, owner.ID, owner.ID, page, 10)
		if err != nil {
			t.Fatalf("UserPosts(page=%d) error = %v", page, err)
		}
		if len(posts.Posts) != 0 || posts.Pagination.HasMore {
			t.Errorf("UserPosts(page=%d) = %d posts, pagination %+v", page, len(posts.Posts), posts.Pagination)
		}

		comments, err := env.svc.ListComments(ctx, p.ID, page, 10)
		if err != nil {
			t.Fatalf("ListComments(page=%d) error = %v", page, err)
		}
		if len(comments.Comments) != 0 || comments.Pagination.HasMore {
			t.Errorf("ListComments(page=%d) = %d comments, pagination %+v", page, len(comments.Comments), comments.Pagination)
		}
	}
}

func TestLikeUnlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.account(t, "owner")
	fan := env.account(t, "fan")
	p := env.post(t, owner, "like me")

	state, err := env.svc.LikePost(ctx, fan.ID, p.ID)
	if err != nil {
		t.Fatalf("LikePost() error = %v", err)
	}
	if state.LikeCount != 1 || !state.ViewerHasLiked || state.PostID != p.ID {
		t.Errorf("state = %+v", state)
	}

	_, err = env.svc.LikePost(ctx, fan.ID, p.ID)
	wantKind(t, err, KindConflict, "Post already liked")

	got, err := env.svc.GetPost(ctx, fan.ID, p.ID)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if got.LikeCount != 1 || !got.ViewerHasLiked {
		t.Errorf("enriched like fields = %d/%v", got.LikeCount, got.ViewerHasLiked)
	}

	asOwner, _ := env.svc.GetPost(ctx, owner.ID, p.ID)
	if asOwner.ViewerHasLiked {
		t.Error("owner has not liked the post")
	}

	state, err = env.svc.UnlikePost(ctx, fan.ID, p.ID)
	if err != nil {
		t.Fatalf("UnlikePost() error = %v", err)
	}
	if state.LikeCount != 0 || state.ViewerHasLiked {
		t.Errorf("state after unlike = %+v", state)
	}

	_, err = env.svc.UnlikePost(ctx, fan.ID, p.ID)
	wantKind(t, err, KindNotFound, "Post not liked")
}

func TestLike_Errors(t *testing.T) {
	env := newTestEnv(t)
	fan := env.account(t, "fan")

	_, err := env.svc.LikePost(context.Background(), fan.ID, uuid.NewString())
	wantKind(t, err, KindNotFound, "Post not found")

	_, err = env.svc.LikePost(context.Background(), fan.ID, "not-a-uuid")
	wantKind(t, err, KindValidation, "Invalid post ID")
}

func TestListLikers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.account(t, "owner")
	first := env.account(t, "first")
	second := env.account(t, "second")
	p := env.post(t, owner, "")

	for _, a := range []*models.Account{first, second} {
		if _, err := env.svc.LikePost(ctx, a.ID, p.ID); err != nil {
			t.Fatalf("LikePost() error = %v", err)
		}
	}

	likers, err := env.svc.ListLikers(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListLikers() error = %v", err)
	}
	if len(likers) != 2 || likers[0].ID != second.ID || likers[1].ID != first.ID {
		t.Errorf("likers = %+v, want newest first", likers)
	}
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.account(t, "owner")
	author := env.account(t, "author")
	p := env.post(t, owner, "")

	_, err := env.svc.CreateComment(ctx, author.ID, p.ID, CreateCommentInput{Text: "   "})
	wantKind(t, err, KindValidation, "")

	_, err = env.svc.CreateComment(ctx, author.ID, p.ID, CreateCommentInput{Text: strings.Repeat("x", models.MaxCommentLength+1)})
	wantKind(t, err, KindValidation, "")

	for i := 0; i < 12; i++ {
		c, err := env.svc.CreateComment(ctx, author.ID, p.ID, CreateCommentInput{Text: "  nice  "})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if c.Text != "nice" || c.Author.Handle != "author" {
			t.Errorf("comment = %+v", c)
		}
	}

	page, err := env.svc.ListComments(ctx, p.ID, 2, 5)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(page.Comments) != 5 || page.Pagination.TotalCount != 12 || page.Pagination.TotalPages != 3 || !page.Pagination.HasMore {
		t.Errorf("page = %d comments, %+v", len(page.Comments), page.Pagination)
	}

	// Feed listings carry at most 10 recent comments.
	feed, err := env.svc.Feed(ctx, author.ID, 1, 10)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if got := len(feed.Posts[0].RecentComments); got != 10 {
		t.Errorf("feed recent comments = %d, want 10", got)
	}

	// Post detail carries up to 50.
	detail, err := env.svc.GetPost(ctx, author.ID, p.ID)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if got := len(detail.RecentComments); got != 12 {
		t.Errorf("detail recent comments = %d, want 12", got)
	}

	_, err = env.svc.ListComments(ctx, uuid.NewString(), 1, 10)
	wantKind(t, err, KindNotFound, "Post not found")
}

func TestDeleteComment_Authorization(t *testing.T) {
	tests := []struct {
		name      string
		actor     string // "author", "owner" or "third"
		forbidden bool
		wantEvent audit.EventType
	}{
		{"comment author", "author", false, audit.EventTypeCommentDeleted},
		{"post owner", "owner", false, audit.EventTypeCommentModerated},
		{"third party", "third", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			accounts := map[string]*models.Account{
				"owner":  env.account(t, "owner"),
				"author": env.account(t, "author"),
				"third":  env.account(t, "third"),
			}
			p := env.post(t, accounts["owner"], "")
			c, err := env.svc.CreateComment(ctx, accounts["author"].ID, p.ID, CreateCommentInput{Text: "hi"})
			if err != nil {
				t.Fatalf("CreateComment() error = %v", err)
			}

			err = env.svc.DeleteComment(ctx, accounts[tt.actor].ID, p.ID, c.ID)
			if tt.forbidden {
				wantKind(t, err, KindForbidden, "Not authorized to delete this comment")
				if n, _ := env.db.CountComments(ctx, p.ID); n != 1 {
					t.Errorf("comment count = %d, want 1", n)
				}
				if events := env.auditEvents(t); len(events) != 0 {
					t.Errorf("unexpected audit events %+v", events)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeleteComment() error = %v", err)
			}
			if n, _ := env.db.CountComments(ctx, p.ID); n != 0 {
				t.Errorf("comment count = %d, want 0", n)
			}

			events := env.auditEvents(t)
			if len(events) != 1 || events[0].Type != tt.wantEvent || events[0].ActorID != accounts[tt.actor].ID {
				t.Errorf("audit events = %+v, want one %s", events, tt.wantEvent)
			}
		})
	}
}

func TestDeleteComment_WrongPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.account(t, "owner")
	p1 := env.post(t, owner, "")
	p2 := env.post(t, owner, "")
	c, err := env.svc.CreateComment(ctx, owner.ID, p1.ID, CreateCommentInput{Text: "hi"})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	err = env.svc.DeleteComment(ctx, owner.ID, p2.ID, c.ID)
	wantKind(t, err, KindNotFound, "Comment not found")
}

func TestDeletePost_CascadeAndAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.account(t, "owner")
	fan := env.account(t, "fan")
	p := env.post(t, owner, "")

	if _, err := env.svc.LikePost(ctx, fan.ID, p.ID); err != nil {
		t.Fatalf("LikePost() error = %v", err)
	}
	if _, err := env.svc.CreateComment(ctx, fan.ID, p.ID, CreateCommentInput{Text: "wow"}); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	err := env.svc.DeletePost(ctx, fan.ID, p.ID)
	wantKind(t, err, KindForbidden, "Not authorized to delete this post")

	if err := env.svc.DeletePost(ctx, owner.ID, p.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	if n, _ := env.db.CountLikes(ctx, p.ID); n != 0 {
		t.Errorf("likes after delete = %d", n)
	}
	if n, _ := env.db.CountComments(ctx, p.ID); n != 0 {
		t.Errorf("comments after delete = %d", n)
	}

	_, err = env.svc.GetPost(ctx, owner.ID, p.ID)
	wantKind(t, err, KindNotFound, "Post not found")

	err = env.svc.DeletePost(ctx, owner.ID, p.ID)
	wantKind(t, err, KindNotFound, "Post not found")

	events := env.auditEvents(t)
	if len(events) != 1 || events[0].Type != audit.EventTypePostDeleted || events[0].TargetID != p.ID {
		t.Errorf("audit events = %+v", events)
	}
}

func TestFollowUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.account(t, "alice")
	b := env.account(t, "bob")

	_, err := env.svc.Follow(ctx, a.ID, a.ID)
	wantKind(t, err, KindValidation, "Cannot follow yourself")

	_, err = env.svc.Follow(ctx, a.ID, uuid.NewString())
	wantKind(t, err, KindNotFound, "User not found")

	_, err = env.svc.Follow(ctx, a.ID, "bob")
	wantKind(t, err, KindValidation, "Invalid user ID")

	state, err := env.svc.Follow(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if state.FollowersCount != 1 || !state.IsFollowing || state.AccountID != b.ID {
		t.Errorf("state = %+v", state)
	}

	_, err = env.svc.Follow(ctx, a.ID, b.ID)
	wantKind(t, err, KindConflict, "Already following this user")

	followers, err := env.svc.Followers(ctx, b.ID)
	if err != nil || len(followers) != 1 || followers[0].ID != a.ID {
		t.Errorf("Followers() = %+v, %v", followers, err)
	}
	following, err := env.svc.Following(ctx, a.ID)
	if err != nil || len(following) != 1 || following[0].ID != b.ID {
		t.Errorf("Following() = %+v, %v", following, err)
	}

	state, err = env.svc.Unfollow(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	if state.FollowersCount != 0 || state.IsFollowing {
		t.Errorf("state after unfollow = %+v", state)
	}

	_, err = env.svc.Unfollow(ctx, a.ID, b.ID)
	wantKind(t, err, KindNotFound, "Not following this user")
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.account(t, "alice")
	b := env.account(t, "bob")
	env.post(t, b, "one")
	env.post(t, b, "two")
	env.follow(t, a, b)

	profile, err := env.svc.GetProfile(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.PostsCount != 2 || profile.FollowersCount != 1 || profile.FollowingCount != 0 {
		t.Errorf("counts = %d/%d/%d", profile.PostsCount, profile.FollowersCount, profile.FollowingCount)
	}
	if !profile.IsFollowing || profile.IsOwnProfile {
		t.Errorf("flags = following:%v own:%v", profile.IsFollowing, profile.IsOwnProfile)
	}

	own, err := env.svc.GetProfile(ctx, b.ID, b.ID)
	if err != nil {
		t.Fatalf("GetProfile(own) error = %v", err)
	}
	if !own.IsOwnProfile || own.IsFollowing {
		t.Errorf("own flags = following:%v own:%v", own.IsFollowing, own.IsOwnProfile)
	}

	_, err = env.svc.GetProfile(ctx, a.ID, uuid.NewString())
	wantKind(t, err, KindNotFound, "User not found")
}

func TestUserPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.account(t, "alice")
	b := env.account(t, "bob")
	env.post(t, a, "a1")
	env.post(t, b, "b1")
	env.post(t, b, "b2")

	page, err := env.svc.UserPosts(ctx, a.ID, b.ID, 1, 0)
	if err != nil {
		t.Fatalf("UserPosts() error = %v", err)
	}
	if len(page.Posts) != 2 || page.Posts[0].Caption != "b2" || page.Posts[1].Caption != "b1" {
		t.Errorf("posts = %+v", page.Posts)
	}
	if page.Pagination.Limit != 10 || page.Pagination.TotalCount != 2 {
		t.Errorf("pagination = %+v", page.Pagination)
	}
}

func TestSearchAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.account(t, "ada.lovelace")
	env.account(t, "grace")

	_, err := env.svc.SearchAccounts(context.Background(), "  ")
	wantKind(t, err, KindValidation, "Search query is required")

	results, err := env.svc.SearchAccounts(context.Background(), "LOVE")
	if err != nil {
		t.Fatalf("SearchAccounts() error = %v", err)
	}
	if len(results) != 1 || results[0].Handle != "ada.lovelace" {
		t.Errorf("results = %+v", results)
	}
}
