// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package testinfra provides container-backed infrastructure for integration
// tests. Everything here is built only with the integration tag:
//
//	go test -tags integration ./internal/database/...
//
// # PostgreSQL Container
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    db, err := database.New(&config.DatabaseConfig{Driver: "postgres", URL: pg.URL})
//	    ...
//	}
//
// Tests skip cleanly when Docker is unavailable.
package testinfra
