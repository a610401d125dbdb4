// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package authz decides who may delete posts and comments, using Casbin with a
// relationship model: a post may be deleted by its author, a comment by its
// author or by the owner of the post it is attached to.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Actions checked by the social service.
const (
	ActionDeletePost    = "post.delete"
	ActionDeleteComment = "comment.delete"
)

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded model when set and present.
	ModelPath string

	// PolicyPath overrides the embedded policy when set and present.
	PolicyPath string
}

// Resource names the accounts a delete rule can relate the actor to.
type Resource struct {
	// AuthorID is the account that created the post or comment.
	AuthorID string
	// PostOwnerID is the owner of the post (for a comment, its parent post).
	PostOwnerID string
}

// Enforcer wraps the Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer. A nil config uses the embedded model and policy.
func NewEnforcer(config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = &EnforcerConfig{}
	}

	var (
		m   model.Model
		err error
	)
	if config.ModelPath != "" && fileExists(config.ModelPath) {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" && fileExists(config.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) != 3 || parts[0] != "p" {
			return fmt.Errorf("invalid policy line %q", line)
		}

		if _, err := enforcer.AddPolicy(parts[1], parts[2]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Enforce reports whether actorID may perform action on res.
func (e *Enforcer) Enforce(actorID, action string, res Resource) (bool, error) {
	start := time.Now()

	allowed, err := e.enforcer.Enforce(actorID, action, res.AuthorID, res.PostOwnerID)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	recordDecision(action, allowed, time.Since(start))
	return allowed, nil
}

// CanDeletePost reports whether actorID may delete a post owned by ownerID.
func (e *Enforcer) CanDeletePost(actorID, ownerID string) (bool, error) {
	return e.Enforce(actorID, ActionDeletePost, Resource{AuthorID: ownerID, PostOwnerID: ownerID})
}

// CanDeleteComment reports whether actorID may delete a comment written by
// authorID on a post owned by postOwnerID.
func (e *Enforcer) CanDeleteComment(actorID, authorID, postOwnerID string) (bool, error) {
	return e.Enforce(actorID, ActionDeleteComment, Resource{AuthorID: authorID, PostOwnerID: postOwnerID})
}

// GetPolicy returns all policy rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // GetPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
