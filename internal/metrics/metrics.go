// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package metrics provides Prometheus instrumentation for production
// observability:
//   - MongoDB query performance per collection
//   - API endpoint latency and throughput
//   - Authentication outcomes and lockouts
//   - Image processing pipeline
//   - Outbound mail and its circuit breaker
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongodb_query_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongodb_query_errors_total",
			Help: "Total number of MongoDB operation errors",
		},
		[]string{"operation", "collection"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"outcome"}, // "success", "bad_credentials", "locked_out", "inactive"
	)

	AuthActiveLockouts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_active_lockouts",
			Help: "Current number of locked-out login identities",
		},
	)

	PasswordResetsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "password_resets_issued_total",
			Help: "Total number of password reset tokens issued",
		},
	)

	PasswordResetsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "password_resets_completed_total",
			Help: "Total number of password resets completed",
		},
	)

	// Image Processing Metrics
	ImageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_processing_duration_seconds",
			Help:    "Duration of image decode/resize/encode in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"}, // "tour_cover", "tour_image", "user_photo"
	)

	ImageProcessingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_processing_errors_total",
			Help: "Total number of image processing failures",
		},
		[]string{"kind", "reason"}, // reason: "decode", "too_large", "write"
	)

	// Mail Metrics
	MailSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sent_total",
			Help: "Total number of outbound emails by result",
		},
		[]string{"kind", "result"}, // kind: "password_reset", "welcome"; result: "success", "failure", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Booking Metrics
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	ReviewRecalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "review_rating_recalculations_total",
			Help: "Total number of tour rating recalculations after review mutations",
		},
	)
)

// ObserveDBQuery records the duration of a MongoDB operation and counts an
// error when one occurred.
func ObserveDBQuery(operation, collection string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordAPIRequest records an API request with method, endpoint, and status code.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
