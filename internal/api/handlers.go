// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package api provides HTTP handlers and routing using the Chi router.
package api

import (
	"time"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/authz"
	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/images"
	"github.com/tomtom215/trailhead/internal/mail"
	"github.com/tomtom215/trailhead/internal/query"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by resource:
//   - handlers_auth.go: signup, login, logout, password flows
//   - handlers_tours.go: tour CRUD, aggregations, geospatial, images
//   - handlers_users.go: profile and admin user management
//   - handlers_reviews.go: review CRUD with rating recalculation
//   - handlers_bookings.go: booking CRUD
//   - handlers_health.go: liveness and readiness
type Handler struct {
	db           *database.DB
	config       *config.Config
	jwtManager   *auth.JWTManager
	lockout      *auth.LockoutManager
	loginLimiter *auth.LoginLimiter
	mailer       *mail.Mailer
	images       *images.Processor
	startTime    time.Time
}

// NewHandler creates an API handler with all required dependencies.
func NewHandler(
	db *database.DB,
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	lockout *auth.LockoutManager,
	loginLimiter *auth.LoginLimiter,
	mailer *mail.Mailer,
	processor *images.Processor,
) *Handler {
	return &Handler{
		db:           db,
		config:       cfg,
		jwtManager:   jwtManager,
		lockout:      lockout,
		loginLimiter: loginLimiter,
		mailer:       mailer,
		images:       processor,
		startTime:    time.Now(),
	}
}

// queryLimits returns pagination limits from config.
func (h *Handler) queryLimits() query.Limits {
	return query.Limits{
		DefaultPageSize: h.config.API.DefaultPageSize,
		MaxPageSize:     h.config.API.MaxPageSize,
	}
}

// Router wires a Handler to middleware and routes.
type Router struct {
	handler       *Handler
	authMw        *auth.Middleware
	enforcer      *authz.Enforcer
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, authMw *auth.Middleware, enforcer *authz.Enforcer, chiMw *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		authMw:        authMw,
		enforcer:      enforcer,
		chiMiddleware: chiMw,
	}
}
