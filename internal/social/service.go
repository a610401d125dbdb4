// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package social implements the feed and social graph: the feed engine with
// its cold-start fallback, per-page enrichment, and the post, like, comment
// and follow operations behind the REST API.
//
// Every operation takes the viewer's account id explicitly. Errors returned
// to callers are *Error values classified by Kind; anything else is an
// internal failure.
package social

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tomtom215/shutterfeed/internal/audit"
	"github.com/tomtom215/shutterfeed/internal/authz"
	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/metrics"
	"github.com/tomtom215/shutterfeed/internal/models"
)

// Config holds listing limits.
type Config struct {
	DefaultPageSize    int
	MaxPageSize        int
	DefaultCommentSize int
	FeedCommentLimit   int
	DetailCommentLimit int
	SearchLimit        int
}

// DefaultConfig returns the standard listing limits.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:    10,
		MaxPageSize:        100,
		DefaultCommentSize: 50,
		FeedCommentLimit:   10,
		DetailCommentLimit: 50,
		SearchLimit:        10,
	}
}

// ConfigFromAPI converts the application API config.
func ConfigFromAPI(c config.APIConfig) Config {
	return Config{
		DefaultPageSize:    c.DefaultPageSize,
		MaxPageSize:        c.MaxPageSize,
		DefaultCommentSize: c.DefaultCommentSize,
		FeedCommentLimit:   c.FeedCommentLimit,
		DetailCommentLimit: c.DetailCommentLimit,
		SearchLimit:        c.SearchLimit,
	}
}

// Service implements the social operations.
type Service struct {
	store    Store
	graph    *GraphReader
	feed     *FeedEngine
	enricher *Enricher
	enforcer *authz.Enforcer
	audit    *audit.Logger
	cfg      Config
}

// NewService wires a Service. auditLog may be nil to disable the audit trail.
func NewService(store Store, enforcer *authz.Enforcer, auditLog *audit.Logger, cfg Config) *Service {
	graph := NewGraphReader(store)
	return &Service{
		store:    store,
		graph:    graph,
		feed:     NewFeedEngine(graph, store, cfg.MaxPageSize),
		enricher: NewEnricher(store),
		enforcer: enforcer,
		audit:    auditLog,
		cfg:      cfg,
	}
}

// Config returns the listing limits in effect.
func (s *Service) Config() Config {
	return s.cfg
}

// Feed returns a page of the viewer's feed with every post enriched.
func (s *Service) Feed(ctx context.Context, viewerID string, page, limit int) (*models.PostPage, error) {
	fp, err := s.feed.Page(ctx, viewerID, page, s.pageSize(limit))
	if err != nil {
		return nil, Internal("Failed to load feed", err)
	}

	posts, err := s.enricher.Enrich(ctx, viewerID, fp.Posts, s.cfg.FeedCommentLimit)
	if err != nil {
		return nil, Internal("Failed to load feed", err)
	}

	return &models.PostPage{
		Posts:      posts,
		Pagination: models.NewPagination(fp.Request.Page, fp.Request.Limit, fp.TotalCount),
	}, nil
}

// pageSize substitutes the default for a missing limit. Explicit values are
// clamped later by NewPageRequest.
func (s *Service) pageSize(limit int) int {
	if limit == 0 {
		return s.cfg.DefaultPageSize
	}
	return limit
}

func (s *Service) pageRequest(page, limit, def int) models.PageRequest {
	if limit == 0 {
		limit = def
	}
	return models.NewPageRequest(page, limit, s.cfg.MaxPageSize)
}

// parseID validates a path id.
func parseID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Validation("Invalid " + what + " ID")
	}
	return nil
}

// requirePost returns NotFound when the post does not exist.
func (s *Service) requirePost(ctx context.Context, postID string) error {
	ok, err := s.store.PostExists(ctx, postID)
	if err != nil {
		return Internal("Failed to load post", err)
	}
	if !ok {
		return NotFound("Post not found")
	}
	return nil
}

// requireAccount returns NotFound when the account does not exist.
func (s *Service) requireAccount(ctx context.Context, accountID string) error {
	ok, err := s.store.AccountExists(ctx, accountID)
	if err != nil {
		return Internal("Failed to load user", err)
	}
	if !ok {
		return NotFound("User not found")
	}
	return nil
}

// recordMutation reports the outcome of a mutation and passes err through.
func recordMutation(action string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	metrics.RecordMutation(action, outcome)
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}
