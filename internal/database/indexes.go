// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/metrics"
)

// EnsureIndexes creates all required indexes. CreateMany is idempotent, so
// this is safe to run on every startup.
//
// Indexes:
//   - tours: unique name, unique slug, compound (price, ratings_average),
//     2dsphere on start_location
//   - users: unique email
//   - reviews: unique compound (tour, user), tour lookup
//   - bookings: per-user and per-tour lookups
func (d *DB) EnsureIndexes(ctx context.Context) error {
	start := time.Now()

	indexes := map[string][]mongo.IndexModel{
		CollTours: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "price", Value: 1},
					{Key: "ratings_average", Value: -1},
				},
			},
			{
				Keys: bson.D{{Key: "start_location", Value: "2dsphere"}},
			},
		},
		CollUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollReviews: {
			{
				Keys: bson.D{
					{Key: "tour", Value: 1},
					{Key: "user", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "tour", Value: 1}},
			},
		},
		CollBookings: {
			{
				Keys: bson.D{{Key: "user", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "tour", Value: 1}},
			},
		},
	}

	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	for coll, models := range indexes {
		if _, err := d.collection(coll).Indexes().CreateMany(opCtx, models); err != nil {
			metrics.ObserveDBQuery("create_indexes", coll, start, err)
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}

	logger := logging.WithComponent("database")
	logger.Debug().
		Dur("elapsed", time.Since(start)).
		Msg("Indexes ensured")

	return nil
}
