// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package client is a Go client for the Shutterfeed REST API together with
// a normalized reconciliation cache.
//
// Client speaks HTTP and decodes the response envelope. Store holds fetched
// entities by id plus ordered id lists per view, and changes only through
// Dispatch. Reconciler ties the two together: reads merge into the Store, and
// like/unlike/follow/unfollow are applied optimistically and rolled back when
// the server rejects them.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/metrics"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// maxResponseBytes bounds a decoded response body.
const maxResponseBytes = 16 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// Token is an initial session token. Login and Signup replace it.
	Token string

	// Timeout bounds each request. Default: 15s
	Timeout time.Duration

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client

	// BreakerName labels the circuit breaker in logs and metrics.
	// Default: "shutterfeed-api"
	BreakerName string
}

// Client calls the Shutterfeed API. Server errors and transport failures
// feed a circuit breaker; 4xx responses are answers, not failures.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	name    string

	mu    sync.RWMutex
	token string
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	name := cfg.BreakerName
	if name == "" {
		name = "shutterfeed-api"
	}

	c := &Client{
		baseURL: base.String(),
		http:    httpClient,
		name:    name,
		token:   cfg.Token,
	}
	metrics.SetClientBreakerState(name, stateToInt(gobreaker.StateClosed))
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetClientBreakerState(name, stateToInt(to))
		},
	})
	return c, nil
}

// stateToInt maps breaker states to the gauge values 0 closed, 1 half-open,
// 2 open.
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string                 `json:"code"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details"`
		RequestID string                 `json:"requestId"`
	} `json:"error"`
}

// do sends a request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	data, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, query, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// roundTrip performs one HTTP exchange and returns the envelope data, or an
// *APIError for an error envelope.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Code: "HTTP_" + strconv.Itoa(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if !env.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
			apiErr.RequestID = env.Error.RequestID
		}
		return nil, apiErr
	}
	return env.Data, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// Signup registers an account and adopts its session token.
func (c *Client) Signup(ctx context.Context, in auth.SignupInput) (*auth.Session, error) {
	var session auth.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, in, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Login opens a session by email or handle and adopts its token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*auth.Session, error) {
	var session auth.Session
	in := auth.LoginInput{Identifier: identifier, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Logout revokes the current token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*models.SelfAccount, error) {
	var me models.SelfAccount
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Feed fetches one page of the feed. Zero page or limit use server defaults.
func (c *Client) Feed(ctx context.Context, page, limit int) (*models.PostPage, error) {
	var result models.PostPage
	if err := c.do(ctx, http.MethodGet, "/api/feed", pageQuery(page, limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, imageURL, caption string) (*models.EnrichedPost, error) {
	var post models.EnrichedPost
	body := map[string]string{"imageUrl": imageURL, "caption": caption}
	if err := c.do(ctx, http.MethodPost, "/api/posts", nil, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPost fetches one post with its detail comments.
func (c *Client) GetPost(ctx context.Context, postID string) (*models.EnrichedPost, error) {
	var post models.EnrichedPost
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes one of the viewer's posts.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(postID), nil, nil, nil)
}

// Like likes a post.
func (c *Client) Like(ctx context.Context, postID string) (*models.LikeState, error) {
	return c.likeRequest(ctx, http.MethodPost, postID)
}

// Unlike removes the viewer's like.
func (c *Client) Unlike(ctx context.Context, postID string) (*models.LikeState, error) {
	return c.likeRequest(ctx, http.MethodDelete, postID)
}

func (c *Client) likeRequest(ctx context.Context, method, postID string) (*models.LikeState, error) {
	var state models.LikeState
	if err := c.do(ctx, method, "/api/posts/"+url.PathEscape(postID)+"/like", nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Likers lists a post's likers.
func (c *Client) Likers(ctx context.Context, postID string) ([]models.PublicAccount, error) {
	var accounts []models.PublicAccount
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/likes", nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Comments fetches one page of a post's comments.
func (c *Client) Comments(ctx context.Context, postID string, page, limit int) (*models.CommentPage, error) {
	var result models.CommentPage
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddComment comments on a post.
func (c *Client) AddComment(ctx context.Context, postID, text string) (*models.EnrichedComment, error) {
	var comment models.EnrichedComment
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"text": text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	path := "/api/posts/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Profile fetches a user's profile.
func (c *Client) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UserPosts fetches one page of a user's posts.
func (c *Client) UserPosts(ctx context.Context, userID string, page, limit int) (*models.PostPage, error) {
	var result models.PostPage
	path := "/api/users/" + url.PathEscape(userID) + "/posts"
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Follow follows a user.
func (c *Client) Follow(ctx context.Context, userID string) (*models.FollowState, error) {
	return c.followRequest(ctx, http.MethodPost, userID)
}

// Unfollow unfollows a user.
func (c *Client) Unfollow(ctx context.Context, userID string) (*models.FollowState, error) {
	return c.followRequest(ctx, http.MethodDelete, userID)
}

func (c *Client) followRequest(ctx context.Context, method, userID string) (*models.FollowState, error) {
	var state models.FollowState
	if err := c.do(ctx, method, "/api/users/"+url.PathEscape(userID)+"/follow", nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Followers lists the accounts following a user.
func (c *Client) Followers(ctx context.Context, userID string) ([]models.PublicAccount, error) {
	return c.accountList(ctx, "/api/users/"+url.PathEscape(userID)+"/followers", nil)
}

// Following lists the accounts a user follows.
func (c *Client) Following(ctx context.Context, userID string) ([]models.PublicAccount, error) {
	return c.accountList(ctx, "/api/users/"+url.PathEscape(userID)+"/following", nil)
}

// Search finds users by handle or display name.
func (c *Client) Search(ctx context.Context, q string) ([]models.PublicAccount, error) {
	return c.accountList(ctx, "/api/users/search", url.Values{"q": {q}})
}

func (c *Client) accountList(ctx context.Context, path string, query url.Values) ([]models.PublicAccount, error) {
	var accounts []models.PublicAccount
	if err := c.do(ctx, http.MethodGet, path, query, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
