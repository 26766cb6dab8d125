// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review represents a user's review of a tour.
//
// A unique compound index on (tour, user) guarantees at most one review
// per user per tour. Creating, updating, or deleting a review triggers a
// synchronous recalculation of the tour's ratings summary.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review"`
	Rating    float64            `bson:"rating" json:"rating"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	// Author is the populated reviewer (name and photo only), attached on
	// reads. Never stored.
	Author *ReviewAuthor `bson:"author,omitempty" json:"author,omitempty"`
}

// ReviewAuthor is the subset of the user document attached to reviews on read.
type ReviewAuthor struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
}

// RatingsSummary is the result of the per-tour ratings aggregation, applied
// back to the tour document after every review mutation. A tour with no
// reviews reverts to the defaults (average 4.5, quantity 0).
type RatingsSummary struct {
	NumRatings int     `bson:"num_ratings"`
	AvgRating  float64 `bson:"avg_rating"`
}
