// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

/*
Package main is the entry point for the Shutterfeed server.

Shutterfeed serves a photo feed over a follow graph: accounts publish image
posts, follow each other, and like and comment on posts. The feed shows posts
from followed accounts newest first, and falls back to all posts for an
account that follows nobody.

# Application Architecture

Long-lived components run under a Suture v4 supervisor tree:

	RootSupervisor ("shutterfeed")
	├── DataSupervisor ("data-layer")
	│   ├── Audit writer (async, drains on shutdown)
	│   ├── Revocation janitor
	│   └── Login throttle sweeper
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB (embedded) or PostgreSQL through pgx
 4. Authorization: Casbin policy for destructive actions
 5. Audit: SQL-backed audit store, falling back to memory
 6. Authentication: JWT sessions, revocation store, login throttle
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	JWT_SECRET=<32+ chars>       # Required
	DB_DRIVER=duckdb             # duckdb or postgres
	DUCKDB_PATH=/data/shutterfeed.duckdb
	DATABASE_URL=postgres://...  # When DB_DRIVER=postgres
	REVOCATION_STORE=memory      # memory or badger

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and drains in-flight requests for SHUTDOWN_TIMEOUT, the audit
writer flushes its buffer, and the database is closed last.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 32)
	export DUCKDB_PATH=./shutterfeed.duckdb
	./shutterfeed-server
*/
package main
