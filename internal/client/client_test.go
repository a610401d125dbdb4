// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shutterfeed/internal/api"
	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/authz"
	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/models"
	"github.com/tomtom215/shutterfeed/internal/social"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, code, message string) {
	body := map[string]interface{}{"success": status < 400}
	if data != nil {
		body["data"] = data
	}
	if code != "" {
		body["error"] = map[string]interface{}{"code": code, "message": message, "requestId": "req-1"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, BreakerName: t.Name()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, srv
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://bad"} {
		if _, err := New(Config{BaseURL: raw}); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestClient_DecodesEnvelope(t *testing.T) {
	var gotAuth, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, http.StatusOK, models.PostPage{
			Posts:      []models.EnrichedPost{{ID: "p1", LikeCount: 2}},
			Pagination: models.Pagination{Page: 2, Limit: 5, TotalCount: 6, TotalPages: 2},
		}, "", "")
	})
	c.SetToken("tok")

	result, err := c.Feed(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].ID != "p1" || result.Pagination.Page != 2 {
		t.Errorf("Feed() = %+v", result)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery != "limit=5&page=2" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, "NOT_FOUND", "Post not found")
	})

	_, err := c.GetPost(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "NOT_FOUND" || apiErr.RequestID != "req-1" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !IsNotFound(err) || IsUnauthorized(err) {
		t.Error("status helpers disagree with the error")
	}
	if !strings.Contains(err.Error(), "Post not found") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClient_NonJSONError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.Me(context.Background())
	if !IsStatus(err, http.StatusBadGateway) {
		t.Errorf("error = %v, want 502 APIError", err)
	}
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, nil, "INTERNAL_ERROR", "An internal error occurred")
	})

	for i := 0; i < 5; i++ {
		if _, err := c.Feed(context.Background(), 1, 0); !IsStatus(err, http.StatusInternalServerError) {
			t.Fatalf("call %d error = %v, want 500", i, err)
		}
	}
	if c.BreakerState() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", c.BreakerState())
	}

	_, err := c.Feed(context.Background(), 1, 0)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	if hits.Load() != 5 {
		t.Errorf("server hits = %d, want 5", hits.Load())
	}
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusForbidden, nil, "FORBIDDEN", "Not your post")
	})

	for i := 0; i < 10; i++ {
		if err := c.DeletePost(context.Background(), "p"); !IsStatus(err, http.StatusForbidden) {
			t.Fatalf("call %d error = %v, want 403", i, err)
		}
	}
	if c.BreakerState() != gobreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", c.BreakerState())
	}
}

// newLiveServer runs the real API over in-memory DuckDB.
func newLiveServer(t *testing.T) *httptest.Server {
	t.Helper()

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
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      strings.Repeat("s", 32),
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	revocations := auth.NewMemoryRevocationStore()
	authSvc := auth.NewService(db, jwtManager, revocations, auth.NewLoginThrottle(100, time.Hour), bcrypt.MinCost)

	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.RateLimitDisabled = true

	handler := api.NewHandler(api.HandlerConfig{
		Social: social.NewService(db, enforcer, nil, social.DefaultConfig()),
		Auth:   authSvc,
		DB:     db,
	})
	router := api.NewRouter(handler, api.NewAuthMiddleware(jwtManager, revocations), api.NewChiMiddleware(chiCfg))

	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)
	return srv
}

func TestReconciler_AgainstLiveServer(t *testing.T) {
	srv := newLiveServer(t)
	ctx := context.Background()

	alice, err := New(Config{BaseURL: srv.URL, BreakerName: "alice"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bob, err := New(Config{BaseURL: srv.URL, BreakerName: "bob"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	aliceSession, err := alice.Signup(ctx, auth.SignupInput{Handle: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("alice Signup() error = %v", err)
	}
	if _, err := bob.Signup(ctx, auth.SignupInput{Handle: "bob", Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("bob Signup() error = %v", err)
	}
	if alice.Token() == "" {
		t.Fatal("Signup should adopt the session token")
	}

	created, err := alice.CreatePost(ctx, "https://img.example/sunset.jpg", "sunset")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	r := NewReconciler(bob, nil)

	if _, err := r.LoadProfile(ctx, aliceSession.Account.ID); err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if err := wait(t, r.Follow(ctx, aliceSession.Account.ID)); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	profile, _ := r.Store().Profile(aliceSession.Account.ID)
	if !profile.IsFollowing || profile.FollowersCount != 1 {
		t.Errorf("profile after follow = %+v", profile)
	}

	feed, err := r.LoadFeed(ctx, 1, 10)
	if err != nil {
		t.Fatalf("LoadFeed() error = %v", err)
	}
	if len(feed.Posts) != 1 || feed.Posts[0].ID != created.ID {
		t.Fatalf("feed = %+v, want alice's post", feed.Posts)
	}

	if err := wait(t, r.Like(ctx, created.ID)); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	cached, _ := r.Store().Post(created.ID)
	if cached.LikeCount != 1 || !cached.ViewerHasLiked {
		t.Errorf("cached post after like = (%d, %v)", cached.LikeCount, cached.ViewerHasLiked)
	}

	// Alice deletes the post; bob's like on it must roll back.
	if err := alice.DeletePost(ctx, created.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}
	err = wait(t, r.Unlike(ctx, created.ID))
	if !IsNotFound(err) {
		t.Fatalf("Unlike() error = %v, want not found", err)
	}
	cached, _ = r.Store().Post(created.ID)
	if cached.LikeCount != 1 || !cached.ViewerHasLiked {
		t.Errorf("failed unlike changed the cache: (%d, %v)", cached.LikeCount, cached.ViewerHasLiked)
	}

	if err := bob.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := bob.Me(ctx); !IsUnauthorized(err) {
		t.Errorf("Me() after logout error = %v, want unauthorized", err)
	}
}
