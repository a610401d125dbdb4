// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/shutterfeed/internal/api"
	"github.com/tomtom215/shutterfeed/internal/audit"
	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/authz"
	"github.com/tomtom215/shutterfeed/internal/config"
	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/social"
	"github.com/tomtom215/shutterfeed/internal/supervisor"
	"github.com/tomtom215/shutterfeed/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// revocationSweepInterval is how often expired revocations are purged.
const revocationSweepInterval = time.Hour

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Shutterfeed failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: "shutterfeed",
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Msg("Starting Shutterfeed with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	auditLogger := newAuditLogger(ctx, cfg, db)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	revocations, err := auth.NewRevocationStore(cfg.Security.RevocationStore, cfg.Security.RevocationPath)
	if err != nil {
		return fmt.Errorf("failed to open revocation store: %w", err)
	}
	defer func() {
		if err := revocations.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation store")
		}
	}()
	logging.Info().Str("store", cfg.Security.RevocationStore).Msg("Token revocation store ready")

	throttle := auth.NewLoginThrottle(cfg.Security.LoginAttempts, cfg.Security.LoginWindow)
	authService := auth.NewService(db, jwtManager, revocations, throttle, cfg.Security.BcryptCost)
	socialService := social.NewService(db, enforcer, auditLogger, social.ConfigFromAPI(cfg.API))

	handler := api.NewHandler(api.HandlerConfig{
		Social:       socialService,
		Auth:         authService,
		DB:           db,
		CookieSecure: cfg.Security.CookieSecure,
		Version:      version,
	})
	router := api.NewRouter(
		handler,
		api.NewAuthMiddleware(jwtManager, revocations),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	// Data layer services
	if auditLogger != nil {
		tree.AddDataService(auditLogger)
	}
	tree.AddDataService(auth.NewRevocationJanitor(revocations, revocationSweepInterval))
	tree.AddDataService(throttle)

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Shutterfeed stopped gracefully")
	return nil
}

// newAuditLogger builds the audit trail over the main database. When the
// audit table cannot be created, events are kept in memory instead. Returns
// nil when auditing is disabled.
func newAuditLogger(ctx context.Context, cfg *config.Config, db *database.DB) *audit.Logger {
	if !cfg.Audit.Enabled {
		logging.Info().Msg("Audit logging disabled (AUDIT_ENABLED=false)")
		return nil
	}

	auditCfg := &audit.Config{Enabled: true, BufferSize: cfg.Audit.BufferSize}

	sqlStore := audit.NewSQLStore(db.Conn())
	if err := sqlStore.CreateTable(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to create audit table, keeping audit events in memory")
		return audit.NewLogger(audit.NewMemoryStore(cfg.Audit.BufferSize), auditCfg)
	}

	logging.Info().Str("driver", db.Driver()).Msg("Audit logging initialized with SQL persistence")
	return audit.NewLogger(sqlStore, auditCfg)
}
