// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/trailhead/internal/middleware"
)

// chiMiddleware adapts a func(http.HandlerFunc) http.HandlerFunc
// middleware to Chi's func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(mw(next.ServeHTTP))
	}
}

// SetupChi builds the complete route tree.
//
// Route groups carry their own rate limits: login endpoints are limited
// hardest, health endpoints barely at all. Authentication and
// authorization wrap only the groups that need them, so public tour
// browsing stays middleware-light.
func (rt *Router) SetupChi() *chi.Mux {
	r := chi.NewRouter()
	h := rt.handler
	mw := rt.chiMiddleware
	authn := chiMiddleware(rt.authMw.Authenticate)
	require := func(object, action string) func(http.Handler) http.Handler {
		return chiMiddleware(rt.enforcer.Require(object, action))
	}

	// Global middleware
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	// Prometheus metrics endpoint (outside the API envelope)
	r.Handle("/metrics", promhttp.Handler())

	// Processed upload artifacts (tour images, user photos)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.config.Uploads.Dir))))

	// Health endpoints
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// User and session endpoints
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Account creation and password recovery, strictly limited
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitAuth())
			r.Post("/signup", h.Signup)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		// Login gets the tightest limit of all
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitLogin())
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Post("/logout", h.Logout)
		})

		// Self-service profile endpoints
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(authn)

			r.Get("/me", h.Me)
			r.Patch("/update-me", h.UpdateMe)
			r.Delete("/me", h.DeleteMe)
			r.Patch("/update-password", h.UpdatePassword)
			r.Post("/me/photo", h.UploadUserPhoto)
		})

		// Admin user management
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(authn)
			r.Use(require("users", "manage"))

			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})

	// Tour endpoints
	r.Route("/api/v1/tours", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Public catalog browsing
		r.Get("/", h.ListTours)
		r.Get("/top-5-cheap", h.TopCheapTours)
		r.Get("/stats", h.TourStats)
		r.Get("/within/{distance}/center/{latlng}/unit/{unit}", h.ToursWithin)
		r.Get("/distances/{latlng}/unit/{unit}", h.TourDistances)
		r.Get("/{id}", h.GetTour)

		// Internal planning report for guides and up
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(require("tours", "plan"))
			r.Get("/monthly-plan/{year}", h.MonthlyPlan)
		})

		// Catalog management
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(require("tours", "write"))

			r.Post("/", h.CreateTour)
			r.Patch("/{id}", h.UpdateTour)
			r.Delete("/{id}", h.DeleteTour)
			r.Post("/{id}/images", h.UploadTourImages)
		})

		// Reviews nested under a tour
		r.Get("/{id}/reviews", h.ListReviews)
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(require("reviews", "create"))
			r.Post("/{id}/reviews", h.CreateReview)
		})
	})

	// Flat review endpoints
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", h.ListReviews)
		r.Get("/{id}", h.GetReview)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(require("reviews", "create"))
			r.Post("/", h.CreateReview)
		})

		// Author-or-admin enforcement happens inside the handlers; the
		// policy check only gates the role class.
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(require("reviews", "mutate"))
			r.Patch("/{id}", h.UpdateReview)
			r.Delete("/{id}", h.DeleteReview)
		})
	})

	// Booking endpoints
	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(authn)

		r.Post("/", h.CreateBooking)
		r.Get("/me", h.ListMyBookings)
		r.Get("/{id}", h.GetBooking)

		r.Group(func(r chi.Router) {
			r.Use(require("bookings", "manage"))
			r.Get("/", h.ListBookings)
			r.Patch("/{id}", h.UpdateBooking)
			r.Delete("/{id}", h.DeleteBooking)
		})
	})

	return r
}
