// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package main is the entry point for the Trailhead server.
//
// Trailhead is a self-hosted tour booking platform: a REST API for
// browsing tours (including geospatial search over start locations),
// managing accounts with role-based access, reviewing tours, and
// recording bookings, backed by MongoDB.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional config file (Koanf v2)
//  2. Database: MongoDB connection and index creation
//  3. Authentication: JWT manager, login lockout, login rate limiter
//  4. Authorization: Casbin role-based policy
//  5. Mail: SMTP mailer behind a circuit breaker
//  6. Images: upload processor for tour images and user photos
//  7. HTTP server: Chi router under a suture supervisor tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config.yaml, built-in defaults.
//
// Required in production:
//   - MONGO_URI: MongoDB connection string
//   - JWT_SECRET: 32+ character secret for token signing
//
// Common options:
//   - HTTP_PORT (default 3000)
//   - SMTP_HOST, SMTP_PORT, EMAIL_FROM: outbound mail for password resets
//   - UPLOADS_DIR: where processed images are stored
//   - CORS_ORIGINS: comma-separated allowed origins
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests (10s timeout), and
// closes the MongoDB client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/trailhead/internal/api"
	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/authz"
	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/images"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/mail"
	"github.com/tomtom215/trailhead/internal/supervisor"
	"github.com/tomtom215/trailhead/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Database).
		Str("listen", cfg.ListenAddr()).
		Msg("Starting Trailhead")

	// Connect to MongoDB and ensure indexes
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(startupCtx, &cfg.Database)
	startupCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Authentication components
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	lockout := auth.NewLockoutManager(&cfg.Security)
	loginLimiter := auth.NewLoginLimiter(cfg.Security.LockoutMaxAttempts, cfg.Security.LockoutDuration)
	authMw := auth.NewMiddleware(jwtManager, db, cfg.Security.CookieName)

	// Authorization policy (embedded model and policy)
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}

	// Outbound mail (no-op when disabled)
	mailer := mail.New(&cfg.Email)
	if cfg.Email.Enabled {
		logging.Info().Str("smtp_host", cfg.Email.SMTPHost).Msg("Mailer enabled")
	} else {
		logging.Info().Msg("Mailer disabled - password reset emails will not be sent")
	}

	// Image upload processing
	processor, err := images.NewProcessor(&cfg.Uploads)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize image processor")
	}

	// HTTP layer
	handler := api.NewHandler(db, cfg, jwtManager, lockout, loginLimiter, mailer, processor)
	chiMw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, authMw, enforcer, chiMw)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	// Supervisor tree: zerolog bridged to slog for sutureslog
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddMaintenanceService(services.NewJanitorService(lockout, loginLimiter, 5*time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", server.Addr).Msg("Server started")

	// Wait for a shutdown signal or supervisor failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		if err := <-errCh; err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("Supervisor stopped with error")
		}
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("Supervisor terminated unexpectedly")
			reportUnstopped(tree)
			os.Exit(1)
		}
	}

	reportUnstopped(tree)
	logging.Info().Msg("Shutdown complete")
}

// reportUnstopped logs services that did not stop within the shutdown
// timeout so hangs are visible in production logs.
func reportUnstopped(tree *supervisor.Tree) {
	report, err := tree.UnstoppedServiceReport()
	if err != nil || len(report) == 0 {
		return
	}
	for _, svc := range report {
		logging.Warn().Str("service", fmt.Sprintf("%v", svc.Service)).Msg("Service did not stop cleanly")
	}
}
