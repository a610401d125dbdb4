// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

//go:build integration

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/models"
	"github.com/tomtom215/shutterfeed/internal/testinfra"
)

// TestPostgresBackend runs the core store operations against a real
// PostgreSQL server through pgx.
func TestPostgresBackend(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg)

	db, err := New(&config.DatabaseConfig{Driver: config.DriverPostgres, URL: pg.URL, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("New(postgres): %v", err)
	}
	defer db.Close()

	owner := &models.Account{Handle: "pgowner", Email: "Owner@Example.com", PasswordHash: "h"}
	fan := &models.Account{Handle: "pgfan", Email: "fan@example.com", PasswordHash: "h"}
	for _, a := range []*models.Account{owner, fan} {
		if err := db.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}

	dup := &models.Account{Handle: "pgowner", Email: "x@example.com", PasswordHash: "h"}
	if err := db.CreateAccount(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate handle error = %v, want ErrDuplicate", err)
	}

	p := &models.Post{OwnerID: owner.ID, ImageURL: "https://img.test/a.jpg", Caption: "hello"}
	if err := db.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := db.CreateFollow(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if err := db.CreateFollow(ctx, fan.ID, owner.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate follow error = %v, want ErrDuplicate", err)
	}

	if err := db.CreateLike(ctx, fan.ID, p.ID); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	if err := db.CreateLike(ctx, fan.ID, p.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate like error = %v, want ErrDuplicate", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.CreateComment(ctx, &models.Comment{PostID: p.ID, AuthorID: fan.ID, Text: "nice"}); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}

	following, err := db.FollowingIDs(ctx, fan.ID)
	if err != nil || len(following) != 1 {
		t.Fatalf("FollowingIDs = %v, %v", following, err)
	}

	posts, err := db.ListPosts(ctx, PostScope{OwnerIDs: following}, 10, 0)
	if err != nil || len(posts) != 1 || posts[0].Owner.Handle != "pgowner" {
		t.Fatalf("ListPosts = %+v, %v", posts, err)
	}

	recent, err := db.RecentComments(ctx, []string{p.ID}, 2)
	if err != nil || len(recent[p.ID]) != 2 {
		t.Errorf("RecentComments = %v, %v", recent, err)
	}

	found, err := db.SearchAccounts(ctx, "PGF", 10)
	if err != nil || len(found) != 1 || found[0].ID != fan.ID {
		t.Errorf("SearchAccounts = %+v, %v", found, err)
	}

	if err := db.DeletePostCascade(ctx, p.ID); err != nil {
		t.Fatalf("DeletePostCascade: %v", err)
	}
	if n, _ := db.CountLikes(ctx, p.ID); n != 0 {
		t.Errorf("likes after cascade = %d", n)
	}
	if n, _ := db.CountComments(ctx, p.ID); n != 0 {
		t.Errorf("comments after cascade = %d", n)
	}
}
