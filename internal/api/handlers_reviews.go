// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/models"
)

// nestedTourID extracts the optional tour scope from nested review
// routes (/tours/{id}/reviews). Returns nil on the flat routes, which
// carry no id parameter.
func nestedTourID(w http.ResponseWriter, r *http.Request) (*primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"invalid tour id (must be a 24-character hex ID)", nil)
		return nil, false
	}
	return &id, true
}

// ListReviews handles GET /api/v1/reviews and GET
// /api/v1/tours/{tourId}/reviews. The nested form scopes results to one
// tour. Each review carries its populated author.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tourID, ok := nestedTourID(w, r)
	if !ok {
		return
	}
	opts := h.parseListQuery(w, r, database.ReviewFields)
	if opts == nil {
		return
	}

	reviews, err := h.db.ListReviews(r.Context(), tourID, opts)
	if err != nil {
		respondDBError(w, err, "reviews")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(reviews), Items: reviews}, start)
}

// GetReview handles GET /api/v1/reviews/{id}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	review, err := h.db.GetReview(r.Context(), id)
	if err != nil {
		respondDBError(w, err, "review")
		return
	}
	respondSuccess(w, http.StatusOK, review, start)
}

// CreateReview handles POST /api/v1/reviews and POST
// /api/v1/tours/{tourId}/reviews. The author is always the session user;
// the tour comes from the nested route, falling back to the body.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	tourID, ok := nestedTourID(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	if tourID == nil {
		if req.Tour == "" {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "tour is required", nil)
			return
		}
		id, err := primitive.ObjectIDFromHex(req.Tour)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid tour id", nil)
			return
		}
		tourID = &id
	}

	// The tour must exist and be publicly visible.
	if _, err := h.db.GetTour(r.Context(), *tourID, false); err != nil {
		respondDBError(w, err, "tour")
		return
	}

	review := &models.Review{
		Review: req.Review,
		Rating: req.Rating,
		Tour:   *tourID,
		User:   user.ID,
	}
	if err := h.db.CreateReview(r.Context(), review); err != nil {
		respondDBError(w, err, "review")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("review_id", review.ID.Hex()).Str("tour_id", tourID.Hex()).Msg("review created")
	respondSuccess(w, http.StatusCreated, review, start)
}

// canMutateReview reports whether the user may update or delete the
// review: the author, or an admin. The check runs server-side against
// the stored document, never against client-supplied identifiers.
func canMutateReview(user *models.User, review *models.Review) bool {
	return user.Role == models.RoleAdmin || review.User == user.ID
}

// UpdateReview handles PATCH /api/v1/reviews/{id} (author or admin).
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.db.GetReview(r.Context(), id)
	if err != nil {
		respondDBError(w, err, "review")
		return
	}
	if !canMutateReview(user, existing) {
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR",
			"you can only modify your own reviews", nil)
		return
	}

	var req UpdateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	update := bson.M{}
	if req.Review != nil {
		update["review"] = *req.Review
	}
	if req.Rating != nil {
		update["rating"] = *req.Rating
	}
	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "nothing to update", nil)
		return
	}

	review, err := h.db.UpdateReview(r.Context(), id, update)
	if err != nil {
		respondDBError(w, err, "review")
		return
	}
	respondSuccess(w, http.StatusOK, review, start)
}

// DeleteReview handles DELETE /api/v1/reviews/{id} (author or admin).
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.db.GetReview(r.Context(), id)
	if err != nil {
		respondDBError(w, err, "review")
		return
	}
	if !canMutateReview(user, existing) {
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR",
			"you can only delete your own reviews", nil)
		return
	}

	if err := h.db.DeleteReview(r.Context(), id); err != nil {
		respondDBError(w, err, "review")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("review_id", id.Hex()).Msg("review deleted")
	w.WriteHeader(http.StatusNoContent)
}
