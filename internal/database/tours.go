// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package database

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/trailhead/internal/metrics"
	"github.com/tomtom215/trailhead/internal/models"
	"github.com/tomtom215/trailhead/internal/query"
)

// Earth radii used to convert distances to radians for $centerSphere.
const (
	EarthRadiusMiles = 3963.2
	EarthRadiusKM    = 6378.1
)

// TourFields whitelists the externally filterable/sortable tour fields,
// mapping JSON names to stored BSON names.
var TourFields = map[string]string{
	"name":            "name",
	"duration":        "duration",
	"maxGroupSize":    "max_group_size",
	"difficulty":      "difficulty",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"price":           "price",
	"summary":         "summary",
	"createdAt":       "created_at",
}

// publicTourFilter merges the caller's filter with the secret-tour
// exclusion applied to every public listing and aggregation.
func publicTourFilter(filter bson.M) bson.M {
	merged := bson.M{"secret_tour": bson.M{"$ne": true}}
	for k, v := range filter {
		merged[k] = v
	}
	return merged
}

// CreateTour inserts a tour, deriving its slug and stamping timestamps.
// Ratings default to 4.5 average / 0 quantity until reviews arrive.
func (d *DB) CreateTour(ctx context.Context, tour *models.Tour) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	tour.ID = primitive.NewObjectID()
	tour.Slug = models.Slugify(tour.Name)
	tour.CreatedAt = now
	tour.UpdatedAt = now
	if tour.RatingsAverage == 0 {
		tour.RatingsAverage = 4.5
	}
	tour.RatingsQuantity = 0

	_, err := d.collection(CollTours).InsertOne(opCtx, tour)
	metrics.ObserveDBQuery("insert", CollTours, start, err)
	return translateError(err)
}

// GetTour returns a tour by ID. Secret tours are only returned when
// includeSecret is set (admin paths).
func (d *DB) GetTour(ctx context.Context, id primitive.ObjectID, includeSecret bool) (*models.Tour, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if !includeSecret {
		filter = publicTourFilter(filter)
	}

	var tour models.Tour
	err := d.collection(CollTours).FindOne(opCtx, filter).Decode(&tour)
	metrics.ObserveDBQuery("find_one", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return &tour, nil
}

// ListTours returns tours matching the parsed query options, always
// excluding secret tours.
func (d *DB) ListTours(ctx context.Context, opts *query.Options) ([]models.Tour, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollTours).Find(opCtx, publicTourFilter(opts.Filter), opts.FindOptions())
	if err != nil {
		metrics.ObserveDBQuery("find", CollTours, start, err)
		return nil, translateError(err)
	}

	tours := []models.Tour{}
	err = cursor.All(opCtx, &tours)
	metrics.ObserveDBQuery("find", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return tours, nil
}

// UpdateTour applies a partial update and returns the updated document.
// A rename re-derives the slug.
func (d *DB) UpdateTour(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Tour, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	if name, ok := update["name"].(string); ok {
		update["slug"] = models.Slugify(name)
	}
	update["updated_at"] = time.Now().UTC()

	var tour models.Tour
	err := d.collection(CollTours).FindOneAndUpdate(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&tour)
	metrics.ObserveDBQuery("update", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return &tour, nil
}

// DeleteTour removes a tour by ID.
func (d *DB) DeleteTour(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollTours).DeleteOne(opCtx, bson.M{"_id": id})
	metrics.ObserveDBQuery("delete", CollTours, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TourStatsPipeline builds the by-difficulty statistics aggregation.
// Only public tours rated 4.5 or better contribute.
func TourStatsPipeline() []bson.M {
	return []bson.M{
		{"$match": publicTourFilter(bson.M{
			"ratings_average": bson.M{"$gte": 4.5},
		})},
		{"$group": bson.M{
			"_id":         "$difficulty",
			"num_tours":   bson.M{"$sum": 1},
			"num_ratings": bson.M{"$sum": "$ratings_quantity"},
			"avg_rating":  bson.M{"$avg": "$ratings_average"},
			"avg_price":   bson.M{"$avg": "$price"},
			"min_price":   bson.M{"$min": "$price"},
			"max_price":   bson.M{"$max": "$price"},
		}},
		{"$sort": bson.M{"avg_price": 1}},
	}
}

// TourStats runs the by-difficulty statistics aggregation.
func (d *DB) TourStats(ctx context.Context) ([]models.TourStats, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollTours).Aggregate(opCtx, TourStatsPipeline())
	if err != nil {
		metrics.ObserveDBQuery("aggregate_stats", CollTours, start, err)
		return nil, translateError(err)
	}

	stats := []models.TourStats{}
	err = cursor.All(opCtx, &stats)
	metrics.ObserveDBQuery("aggregate_stats", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return stats, nil
}

// MonthlyPlanPipeline builds the monthly plan aggregation for a year:
// unwind start dates, keep the requested year, group by month.
func MonthlyPlanPipeline(year int) []bson.M {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	return []bson.M{
		{"$match": publicTourFilter(nil)},
		{"$unwind": "$start_dates"},
		{"$match": bson.M{
			"start_dates": bson.M{"$gte": yearStart, "$lt": yearEnd},
		}},
		{"$group": bson.M{
			"_id":             bson.M{"$month": "$start_dates"},
			"num_tour_starts": bson.M{"$sum": 1},
			"tours":           bson.M{"$push": "$name"},
		}},
		{"$sort": bson.M{"num_tour_starts": -1}},
	}
}

// MonthlyPlan runs the monthly plan aggregation for the given year.
func (d *DB) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollTours).Aggregate(opCtx, MonthlyPlanPipeline(year))
	if err != nil {
		metrics.ObserveDBQuery("aggregate_plan", CollTours, start, err)
		return nil, translateError(err)
	}

	plan := []models.MonthlyPlanEntry{}
	err = cursor.All(opCtx, &plan)
	metrics.ObserveDBQuery("aggregate_plan", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return plan, nil
}

// RadiusInRadians converts a distance in the given unit ("mi" or "km") to
// radians for $centerSphere. Unknown units are treated as kilometers.
func RadiusInRadians(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / EarthRadiusMiles
	}
	return distance / EarthRadiusKM
}

// DistanceMultiplier converts $geoNear's meter distances to the requested unit.
func DistanceMultiplier(unit string) float64 {
	if unit == "mi" {
		return 0.000621371
	}
	return 0.001
}

// ToursWithin returns public tours whose start location lies within the
// given radius (in radians) of a center point.
func (d *DB) ToursWithin(ctx context.Context, lat, lng, radiusRadians float64) ([]models.Tour, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	filter := publicTourFilter(bson.M{
		"start_location": bson.M{
			"$geoWithin": bson.M{
				// [lng, lat] per GeoJSON ordering
				"$centerSphere": bson.A{bson.A{lng, lat}, radiusRadians},
			},
		},
	})

	cursor, err := d.collection(CollTours).Find(opCtx, filter)
	if err != nil {
		metrics.ObserveDBQuery("geo_within", CollTours, start, err)
		return nil, translateError(err)
	}

	tours := []models.Tour{}
	err = cursor.All(opCtx, &tours)
	metrics.ObserveDBQuery("geo_within", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return tours, nil
}

// DistancesPipeline builds the $geoNear aggregation computing each public
// tour's distance from a point. $geoNear must be the first stage.
func DistancesPipeline(lat, lng, multiplier float64) []bson.M {
	return []bson.M{
		{"$geoNear": bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              bson.M{"secret_tour": bson.M{"$ne": true}},
		}},
		{"$project": bson.M{
			"name":     1,
			"distance": bson.M{"$round": bson.A{"$distance", 1}},
		}},
	}
}

// TourDistances returns every public tour with its distance from the
// given point, nearest first, in the requested unit.
func (d *DB) TourDistances(ctx context.Context, lat, lng float64, unit string) ([]models.TourDistance, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	pipeline := DistancesPipeline(lat, lng, DistanceMultiplier(unit))
	cursor, err := d.collection(CollTours).Aggregate(opCtx, pipeline)
	if err != nil {
		metrics.ObserveDBQuery("geo_near", CollTours, start, err)
		return nil, translateError(err)
	}

	distances := []models.TourDistance{}
	err = cursor.All(opCtx, &distances)
	metrics.ObserveDBQuery("geo_near", CollTours, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return distances, nil
}

// RoundRating rounds a ratings average to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
