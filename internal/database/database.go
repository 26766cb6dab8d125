// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package database provides the MongoDB data access layer: connection
// lifecycle, index management, and typed CRUD plus aggregation methods for
// tours, users, reviews, and bookings.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/logging"
)

// Collection names.
const (
	CollTours    = "tours"
	CollUsers    = "users"
	CollReviews  = "reviews"
	CollBookings = "bookings"
)

// Sentinel errors returned by store methods. Handlers map these to HTTP
// status codes.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DB wraps the MongoDB client and provides data access methods.
// All methods take a context and apply the configured per-operation timeout.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.DatabaseConfig
}

// New connects to MongoDB, verifies the connection, and ensures indexes.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		// Best-effort cleanup of the half-open client.
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := &DB{
		client: client,
		db:     client.Database(cfg.Database),
		cfg:    cfg,
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logger := logging.WithComponent("database")
	logger.Info().
		Str("database", cfg.Database).
		Msg("Connected to MongoDB")

	return db, nil
}

// Close disconnects from MongoDB.
func (d *DB) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

// Ping verifies the database connection is alive. Used by the health endpoint.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.opCtx(ctx)
	defer cancel()
	return d.client.Ping(ctx, nil)
}

// opCtx derives a context with the configured per-operation timeout.
func (d *DB) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// collection returns a handle on a named collection.
func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// translateError maps driver errors to the package's sentinel errors.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
