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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/trailhead/internal/metrics"
	"github.com/tomtom215/trailhead/internal/models"
	"github.com/tomtom215/trailhead/internal/query"
)

// Default ratings for a tour with no reviews.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// ReviewFields whitelists the externally filterable/sortable review fields.
var ReviewFields = map[string]string{
	"rating":    "rating",
	"tour":      "tour",
	"user":      "user",
	"createdAt": "created_at",
}

// reviewLookupPipeline attaches the reviewer's name and photo to each
// review via a users lookup, dropping reviews whose author was deleted.
func reviewLookupPipeline(match bson.M) []bson.M {
	return []bson.M{
		{"$match": match},
		{"$lookup": bson.M{
			"from":         CollUsers,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "author_docs",
		}},
		{"$addFields": bson.M{
			"author": bson.M{"$arrayElemAt": bson.A{
				bson.M{"$map": bson.M{
					"input": "$author_docs",
					"as":    "u",
					"in": bson.M{
						"_id":   "$$u._id",
						"name":  "$$u.name",
						"photo": "$$u.photo",
					},
				}},
				0,
			}},
		}},
		{"$project": bson.M{"author_docs": 0}},
	}
}

// CreateReview inserts a review and synchronously recalculates the tour's
// ratings summary. The unique (tour, user) index rejects duplicates.
func (d *DB) CreateReview(ctx context.Context, review *models.Review) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.Author = nil

	_, err := d.collection(CollReviews).InsertOne(opCtx, review)
	metrics.ObserveDBQuery("insert", CollReviews, start, err)
	if err != nil {
		return translateError(err)
	}

	return d.RecalcTourRatings(ctx, review.Tour)
}

// GetReview returns a review by ID with its author populated.
func (d *DB) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollReviews).Aggregate(opCtx, reviewLookupPipeline(bson.M{"_id": id}))
	if err != nil {
		metrics.ObserveDBQuery("find_one", CollReviews, start, err)
		return nil, translateError(err)
	}

	reviews := []models.Review{}
	err = cursor.All(opCtx, &reviews)
	metrics.ObserveDBQuery("find_one", CollReviews, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	if len(reviews) == 0 {
		return nil, ErrNotFound
	}
	return &reviews[0], nil
}

// ListReviews returns reviews matching the parsed query options, optionally
// scoped to a single tour (the nested route), authors populated.
func (d *DB) ListReviews(ctx context.Context, tourID *primitive.ObjectID, opts *query.Options) ([]models.Review, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	match := bson.M{}
	for k, v := range opts.Filter {
		match[k] = v
	}
	if tourID != nil {
		match["tour"] = *tourID
	}

	pipeline := reviewLookupPipeline(match)
	if len(opts.Sort) > 0 {
		pipeline = append(pipeline, bson.M{"$sort": opts.Sort})
	}
	pipeline = append(pipeline,
		bson.M{"$skip": opts.Skip()},
		bson.M{"$limit": int64(opts.Limit)},
	)

	cursor, err := d.collection(CollReviews).Aggregate(opCtx, pipeline)
	if err != nil {
		metrics.ObserveDBQuery("find", CollReviews, start, err)
		return nil, translateError(err)
	}

	reviews := []models.Review{}
	err = cursor.All(opCtx, &reviews)
	metrics.ObserveDBQuery("find", CollReviews, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return reviews, nil
}

// UpdateReview applies a partial update (review text and rating only) and
// recalculates the tour's ratings.
func (d *DB) UpdateReview(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Review, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	update["updated_at"] = time.Now().UTC()

	var review models.Review
	err := d.collection(CollReviews).FindOneAndUpdate(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	metrics.ObserveDBQuery("update", CollReviews, start, err)
	if err != nil {
		return nil, translateError(err)
	}

	if err := d.RecalcTourRatings(ctx, review.Tour); err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review and recalculates the tour's ratings.
func (d *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var review models.Review
	err := d.collection(CollReviews).FindOneAndDelete(opCtx, bson.M{"_id": id}).Decode(&review)
	metrics.ObserveDBQuery("delete", CollReviews, start, err)
	if err != nil {
		return translateError(err)
	}

	return d.RecalcTourRatings(ctx, review.Tour)
}

// RatingsPipeline builds the per-tour ratings aggregation.
func RatingsPipeline(tourID primitive.ObjectID) []bson.M {
	return []bson.M{
		{"$match": bson.M{"tour": tourID}},
		{"$group": bson.M{
			"_id":         "$tour",
			"num_ratings": bson.M{"$sum": 1},
			"avg_rating":  bson.M{"$avg": "$rating"},
		}},
	}
}

// RecalcTourRatings recomputes and stores a tour's ratings summary from its
// reviews. Runs synchronously after every review mutation; a tour left with
// no reviews reverts to the defaults.
func (d *DB) RecalcTourRatings(ctx context.Context, tourID primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollReviews).Aggregate(opCtx, RatingsPipeline(tourID))
	if err != nil {
		metrics.ObserveDBQuery("aggregate_ratings", CollReviews, start, err)
		return translateError(err)
	}

	summaries := []models.RatingsSummary{}
	if err := cursor.All(opCtx, &summaries); err != nil {
		metrics.ObserveDBQuery("aggregate_ratings", CollReviews, start, err)
		return translateError(err)
	}

	avg := float64(defaultRatingsAverage)
	quantity := defaultRatingsQuantity
	if len(summaries) > 0 {
		avg = RoundRating(summaries[0].AvgRating)
		quantity = summaries[0].NumRatings
	}

	_, err = d.collection(CollTours).UpdateOne(
		opCtx,
		bson.M{"_id": tourID},
		bson.M{"$set": bson.M{
			"ratings_average":  avg,
			"ratings_quantity": quantity,
		}},
	)
	metrics.ObserveDBQuery("aggregate_ratings", CollTours, start, err)
	if err != nil {
		return translateError(err)
	}

	metrics.ReviewRecalculations.Inc()
	return nil
}
