// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tour difficulty levels. Any other value is rejected at validation time.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// GeoPoint is a GeoJSON Point with optional tour-specific annotations.
// Coordinates are [longitude, latitude] per the GeoJSON spec, which is
// the order MongoDB's 2dsphere index expects.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`

	// Day is the tour day on which this stop is visited (itinerary stops only).
	Day int `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour represents a bookable tour document.
//
// Invariants enforced by the service layer and indexes:
//   - Name is unique (unique index) and 10-40 characters
//   - Difficulty is one of easy/medium/difficult
//   - RatingsAverage stays within 1.0-5.0, rounded to one decimal
//   - PriceDiscount, when set, is strictly below Price
//   - Slug is derived from Name on create and on rename
//   - Secret tours are excluded from all public listings and aggregations
type Tour struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Slug            string             `bson:"slug" json:"slug"`
	Duration        int                `bson:"duration" json:"duration"`
	MaxGroupSize    int                `bson:"max_group_size" json:"maxGroupSize"`
	Difficulty      string             `bson:"difficulty" json:"difficulty"`
	RatingsAverage  float64            `bson:"ratings_average" json:"ratingsAverage"`
	RatingsQuantity int                `bson:"ratings_quantity" json:"ratingsQuantity"`
	Price           float64            `bson:"price" json:"price"`
	PriceDiscount   float64            `bson:"price_discount,omitempty" json:"priceDiscount,omitempty"`
	Summary         string             `bson:"summary" json:"summary"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string             `bson:"image_cover,omitempty" json:"imageCover,omitempty"`
	Images          []string           `bson:"images,omitempty" json:"images,omitempty"`
	StartDates      []time.Time        `bson:"start_dates,omitempty" json:"startDates,omitempty"`
	StartLocation   *GeoPoint          `bson:"start_location,omitempty" json:"startLocation,omitempty"`
	Locations       []GeoPoint         `bson:"locations,omitempty" json:"locations,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`
	SecretTour      bool               `bson:"secret_tour" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DurationWeeks returns the tour duration in weeks, the virtual field
// exposed on tour detail responses.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// TourStats is one row of the by-difficulty statistics aggregation.
// Only tours with RatingsAverage >= 4.5 contribute.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"num_tours" json:"numTours"`
	NumRatings int     `bson:"num_ratings" json:"numRatings"`
	AvgRating  float64 `bson:"avg_rating" json:"avgRating"`
	AvgPrice   float64 `bson:"avg_price" json:"avgPrice"`
	MinPrice   float64 `bson:"min_price" json:"minPrice"`
	MaxPrice   float64 `bson:"max_price" json:"maxPrice"`
}

// MonthlyPlanEntry is one row of the monthly plan aggregation: how many
// tours start in a given month of the requested year, with their names.
type MonthlyPlanEntry struct {
	Month         int      `bson:"_id" json:"month"`
	NumTourStarts int      `bson:"num_tour_starts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourDistance is one row of the distances aggregation: a tour paired
// with its distance from a reference point, in the requested unit.
type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}
