// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func setupEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return enforcer
}

func TestEmbeddedPolicy(t *testing.T) {
	e := setupEnforcer(t)
	if got := len(e.GetPolicy()); got != 3 {
		t.Errorf("policy count = %d, want 3", got)
	}
}

func TestCanDeletePost(t *testing.T) {
	e := setupEnforcer(t)

	tests := []struct {
		name    string
		actor   string
		owner   string
		allowed bool
	}{
		{"owner", "alice", "alice", true},
		{"someone else", "bob", "alice", false},
		{"anonymous", "", "alice", false},
		{"anonymous on orphan", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CanDeletePost(tt.actor, tt.owner)
			if err != nil {
				t.Fatalf("CanDeletePost() error = %v", err)
			}
			if got != tt.allowed {
				t.Errorf("CanDeletePost(%q, %q) = %v, want %v", tt.actor, tt.owner, got, tt.allowed)
			}
		})
	}
}

func TestCanDeleteComment(t *testing.T) {
	e := setupEnforcer(t)

	tests := []struct {
		name      string
		actor     string
		author    string
		postOwner string
		allowed   bool
	}{
		{"comment author", "carol", "carol", "alice", true},
		{"post owner moderating", "alice", "carol", "alice", true},
		{"author on own post", "alice", "alice", "alice", true},
		{"third party", "bob", "carol", "alice", false},
		{"anonymous", "", "carol", "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CanDeleteComment(tt.actor, tt.author, tt.postOwner)
			if err != nil {
				t.Fatalf("CanDeleteComment() error = %v", err)
			}
			if got != tt.allowed {
				t.Errorf("CanDeleteComment(%q, %q, %q) = %v, want %v",
					tt.actor, tt.author, tt.postOwner, got, tt.allowed)
			}
		})
	}
}

func TestPostOwnerCannotDeleteOthersPostsViaCommentRule(t *testing.T) {
	e := setupEnforcer(t)

	// post.delete has no post_owner relation distinct from author, so a
	// request that only matches post_owner is still denied.
	allowed, err := e.Enforce("alice", ActionDeletePost, Resource{AuthorID: "bob", PostOwnerID: "alice"})
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if allowed {
		t.Error("post.delete must require the author relation")
	}
}

func TestNewEnforcer_PolicyFile(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.csv")
	// Only authors may delete comments in this deployment.
	if err := os.WriteFile(policyPath, []byte("p, comment.delete, author\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	e, err := NewEnforcer(&EnforcerConfig{PolicyPath: policyPath})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	allowed, err := e.CanDeleteComment("alice", "carol", "alice")
	if err != nil {
		t.Fatalf("CanDeleteComment() error = %v", err)
	}
	if allowed {
		t.Error("post owner should be denied when the policy omits post_owner")
	}
}

func TestLoadEmbeddedPolicy_RejectsMalformedLine(t *testing.T) {
	e := setupEnforcer(t)
	if err := loadEmbeddedPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("expected error for malformed policy line")
	}
}

func TestEnforce_RecordsDecision(t *testing.T) {
	e := setupEnforcer(t)
	before := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues(ActionDeletePost, "deny"))

	if _, err := e.CanDeletePost("mallory", "alice"); err != nil {
		t.Fatalf("CanDeletePost() error = %v", err)
	}

	if got := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues(ActionDeletePost, "deny")) - before; got != 1 {
		t.Errorf("deny counter delta = %v, want 1", got)
	}
}
