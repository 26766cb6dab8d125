// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package database

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPublicTourFilterExcludesSecret(t *testing.T) {
	filter := publicTourFilter(bson.M{"difficulty": "easy"})

	secret, ok := filter["secret_tour"].(bson.M)
	if !ok {
		t.Fatalf("secret_tour condition missing: %v", filter)
	}
	if secret["$ne"] != true {
		t.Errorf("secret_tour condition = %v, want $ne true", secret)
	}
	if filter["difficulty"] != "easy" {
		t.Errorf("caller filter lost: %v", filter)
	}
}

func TestActiveUserFilterExcludesDeactivated(t *testing.T) {
	filter := activeUserFilter(bson.M{"email": "a@b.com"})

	active, ok := filter["active"].(bson.M)
	if !ok || active["$ne"] != false {
		t.Errorf("active condition = %v", filter["active"])
	}
	if filter["email"] != "a@b.com" {
		t.Errorf("caller filter lost: %v", filter)
	}
}

func TestTourStatsPipeline(t *testing.T) {
	pipeline := TourStatsPipeline()
	if len(pipeline) != 3 {
		t.Fatalf("pipeline stages = %d, want 3", len(pipeline))
	}

	match := pipeline[0]["$match"].(bson.M)
	ratings, ok := match["ratings_average"].(bson.M)
	if !ok || ratings["$gte"] != 4.5 {
		t.Errorf("ratings threshold = %v", match["ratings_average"])
	}
	if _, ok := match["secret_tour"]; !ok {
		t.Error("stats pipeline does not exclude secret tours")
	}

	group := pipeline[1]["$group"].(bson.M)
	if group["_id"] != "$difficulty" {
		t.Errorf("group key = %v, want $difficulty", group["_id"])
	}
}

func TestMonthlyPlanPipelineYearBounds(t *testing.T) {
	pipeline := MonthlyPlanPipeline(2026)
	if len(pipeline) != 5 {
		t.Fatalf("pipeline stages = %d, want 5", len(pipeline))
	}

	dateMatch := pipeline[2]["$match"].(bson.M)
	bounds := dateMatch["start_dates"].(bson.M)
	if bounds["$gte"] == nil || bounds["$lt"] == nil {
		t.Errorf("year bounds missing: %v", bounds)
	}
}

func TestRadiusInRadians(t *testing.T) {
	tests := []struct {
		distance float64
		unit     string
		want     float64
	}{
		{EarthRadiusMiles, "mi", 1},
		{EarthRadiusKM, "km", 1},
		{EarthRadiusKM, "furlongs", 1}, // unknown unit falls back to km
	}

	for _, tt := range tests {
		if got := RadiusInRadians(tt.distance, tt.unit); got != tt.want {
			t.Errorf("RadiusInRadians(%v, %q) = %v, want %v", tt.distance, tt.unit, got, tt.want)
		}
	}
}

func TestDistanceMultiplier(t *testing.T) {
	if got := DistanceMultiplier("mi"); got != 0.000621371 {
		t.Errorf("mi multiplier = %v", got)
	}
	if got := DistanceMultiplier("km"); got != 0.001 {
		t.Errorf("km multiplier = %v", got)
	}
}

func TestDistancesPipelineGeoNearFirst(t *testing.T) {
	pipeline := DistancesPipeline(34.1, -118.1, 0.001)

	geoNear, ok := pipeline[0]["$geoNear"].(bson.M)
	if !ok {
		t.Fatal("$geoNear is not the first stage")
	}

	near := geoNear["near"].(bson.M)
	coords := near["coordinates"].(bson.A)
	// GeoJSON order: longitude first
	if coords[0] != -118.1 || coords[1] != 34.1 {
		t.Errorf("coordinates = %v, want [lng lat]", coords)
	}

	q := geoNear["query"].(bson.M)
	if _, ok := q["secret_tour"]; !ok {
		t.Error("geoNear query does not exclude secret tours")
	}
}

func TestRatingsPipeline(t *testing.T) {
	tourID := primitive.NewObjectID()
	pipeline := RatingsPipeline(tourID)

	match := pipeline[0]["$match"].(bson.M)
	if match["tour"] != tourID {
		t.Errorf("match tour = %v, want %v", match["tour"], tourID)
	}

	group := pipeline[1]["$group"].(bson.M)
	if group["avg_rating"].(bson.M)["$avg"] != "$rating" {
		t.Errorf("avg_rating accumulator = %v", group["avg_rating"])
	}
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{4.66666, 4.7},
		{4.64, 4.6},
		{5, 5},
		{1.05, 1.1},
	}

	for _, tt := range tests {
		if got := RoundRating(tt.in); got != tt.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTranslateError(t *testing.T) {
	if translateError(nil) != nil {
		t.Error("translateError(nil) != nil")
	}
}
