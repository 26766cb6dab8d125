// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/trailhead/internal/metrics"
	"github.com/tomtom215/trailhead/internal/models"
	"github.com/tomtom215/trailhead/internal/query"
)

// BookingFields whitelists the externally filterable/sortable booking fields.
var BookingFields = map[string]string{
	"tour":      "tour",
	"user":      "user",
	"price":     "price",
	"paid":      "paid",
	"createdAt": "created_at",
}

// CreateBooking inserts a booking, pricing it from the tour document.
func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now().UTC()

	_, err := d.collection(CollBookings).InsertOne(opCtx, booking)
	metrics.ObserveDBQuery("insert", CollBookings, start, err)
	if err != nil {
		return translateError(err)
	}

	metrics.BookingsCreated.Inc()
	return nil
}

// GetBooking returns a booking by ID.
func (d *DB) GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var booking models.Booking
	err := d.collection(CollBookings).FindOne(opCtx, bson.M{"_id": id}).Decode(&booking)
	metrics.ObserveDBQuery("find_one", CollBookings, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return &booking, nil
}

// ListBookings returns bookings matching the parsed query options,
// optionally scoped to a single user (the /bookings/me path).
func (d *DB) ListBookings(ctx context.Context, userID *primitive.ObjectID, opts *query.Options) ([]models.Booking, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	filter := bson.M{}
	for k, v := range opts.Filter {
		filter[k] = v
	}
	if userID != nil {
		filter["user"] = *userID
	}

	cursor, err := d.collection(CollBookings).Find(opCtx, filter, opts.FindOptions())
	if err != nil {
		metrics.ObserveDBQuery("find", CollBookings, start, err)
		return nil, translateError(err)
	}

	bookings := []models.Booking{}
	err = cursor.All(opCtx, &bookings)
	metrics.ObserveDBQuery("find", CollBookings, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return bookings, nil
}

// UpdateBooking applies a partial update (price and paid flag).
func (d *DB) UpdateBooking(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Booking, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollBookings).UpdateOne(opCtx, bson.M{"_id": id}, bson.M{"$set": update})
	metrics.ObserveDBQuery("update", CollBookings, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return d.GetBooking(ctx, id)
}

// DeleteBooking removes a booking by ID.
func (d *DB) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollBookings).DeleteOne(opCtx, bson.M{"_id": id})
	metrics.ObserveDBQuery("delete", CollBookings, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
