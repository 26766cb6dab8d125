// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/models"
	"github.com/tomtom215/trailhead/internal/query"
)

// ListTours handles GET /api/v1/tours with filtering, sorting, field
// selection, and pagination. Secret tours never appear here.
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := h.parseListQuery(w, r, database.TourFields)
	if opts == nil {
		return
	}

	tours, err := h.db.ListTours(r.Context(), opts)
	if err != nil {
		respondDBError(w, err, "tours")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(tours), Items: tours}, start)
}

// TopCheapTours handles GET /api/v1/tours/top-5-cheap, a preset alias for
// the five best-rated tours ordered by rating then price.
func (h *Handler) TopCheapTours(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "-ratingsAverage,price")
	q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	r.URL.RawQuery = q.Encode()

	opts := h.parseListQuery(w, r, database.TourFields)
	if opts == nil {
		return
	}

	tours, err := h.db.ListTours(r.Context(), opts)
	if err != nil {
		respondDBError(w, err, "tours")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(tours), Items: tours}, start)
}

// tourDetail is a tour with its guide references and reviews resolved.
// The embedded tour's raw guide IDs are shadowed by the populated list.
type tourDetail struct {
	*models.Tour
	DurationWeeks float64         `json:"durationWeeks"`
	Guides        []models.User   `json:"guides,omitempty"`
	Reviews       []models.Review `json:"reviews"`
}

// GetTour handles GET /api/v1/tours/{id}: the tour document with guides
// and reviews populated.
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	tour, err := h.db.GetTour(r.Context(), id, false)
	if err != nil {
		respondDBError(w, err, "tour")
		return
	}

	guides, err := h.db.UsersByIDs(r.Context(), tour.Guides)
	if err != nil {
		respondDBError(w, err, "tour guides")
		return
	}

	reviews, err := h.db.ListReviews(r.Context(), &tour.ID, &query.Options{
		Filter: bson.M{},
		Sort:   bson.D{{Key: "created_at", Value: -1}},
		Page:   1,
		Limit:  h.config.API.MaxPageSize,
	})
	if err != nil {
		respondDBError(w, err, "tour reviews")
		return
	}

	respondSuccess(w, http.StatusOK, &tourDetail{
		Tour:          tour,
		DurationWeeks: tour.DurationWeeks(),
		Guides:        guides,
		Reviews:       reviews,
	}, start)
}

// CreateTour handles POST /api/v1/tours (lead-guide or admin).
func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateTourRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	tour, err := tourFromCreateRequest(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.db.CreateTour(r.Context(), tour); err != nil {
		respondDBError(w, err, "tour")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("tour_id", tour.ID.Hex()).Str("name", sanitizeLogValue(tour.Name)).Msg("tour created")
	respondSuccess(w, http.StatusCreated, tour, start)
}

// UpdateTour handles PATCH /api/v1/tours/{id} (lead-guide or admin).
func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTourRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	update, err := tourUpdateFromRequest(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "nothing to update", nil)
		return
	}

	tour, err := h.db.UpdateTour(r.Context(), id, update)
	if err != nil {
		respondDBError(w, err, "tour")
		return
	}
	respondSuccess(w, http.StatusOK, tour, start)
}

// DeleteTour handles DELETE /api/v1/tours/{id} (lead-guide or admin).
func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.db.DeleteTour(r.Context(), id); err != nil {
		respondDBError(w, err, "tour")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("tour_id", id.Hex()).Msg("tour deleted")
	w.WriteHeader(http.StatusNoContent)
}

// TourStats handles GET /api/v1/tours/stats: aggregate rating and price
// statistics grouped by difficulty, for well-rated tours only.
func (h *Handler) TourStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.TourStats(r.Context())
	if err != nil {
		respondDBError(w, err, "tour stats")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(stats), Items: stats}, start)
}

// MonthlyPlan handles GET /api/v1/tours/monthly-plan/{year}: how many
// tours start in each month of the given year (guide and up).
func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"year must be a four-digit year", nil)
		return
	}

	plan, err := h.db.MonthlyPlan(r.Context(), year)
	if err != nil {
		respondDBError(w, err, "monthly plan")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(plan), Items: plan}, start)
}

// ToursWithin handles
// GET /api/v1/tours/within/{distance}/center/{latlng}/unit/{unit}:
// all tours whose start location falls inside the given radius.
func (h *Handler) ToursWithin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"distance must be a positive number", nil)
		return
	}
	lat, lng, err := parseLatLng(chi.URLParam(r, "latlng"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	unit, err := parseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	tours, err := h.db.ToursWithin(r.Context(), lat, lng, database.RadiusInRadians(distance, unit))
	if err != nil {
		respondDBError(w, err, "tours")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(tours), Items: tours}, start)
}

// TourDistances handles GET /api/v1/tours/distances/{latlng}/unit/{unit}:
// every tour's distance from the given point, nearest first.
func (h *Handler) TourDistances(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	lat, lng, err := parseLatLng(chi.URLParam(r, "latlng"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	unit, err := parseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	distances, err := h.db.TourDistances(r.Context(), lat, lng, unit)
	if err != nil {
		respondDBError(w, err, "tour distances")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(distances), Items: distances}, start)
}

// UploadTourImages handles POST /api/v1/tours/{id}/images with a
// multipart form carrying "imageCover" and up to three "images" files.
func (h *Handler) UploadTourImages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	// The tour must exist before any files are written.
	if _, err := h.db.GetTour(r.Context(), id, true); err != nil {
		respondDBError(w, err, "tour")
		return
	}

	if err := r.ParseMultipartForm(h.config.Uploads.MaxSizeBytes); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form", err)
		return
	}
	if r.MultipartForm == nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "multipart form is required", nil)
		return
	}

	update := bson.M{}

	if cover, _, err := r.FormFile("imageCover"); err == nil {
		defer cover.Close()
		path, err := h.images.ProcessTourCover(cover, id.Hex())
		if err != nil {
			respondImageError(w, err)
			return
		}
		update["image_cover"] = path
	}

	files := r.MultipartForm.File["images"]
	if len(files) > 3 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "at most 3 gallery images allowed", nil)
		return
	}
	if len(files) > 0 {
		paths := make([]string, 0, len(files))
		for i, fh := range files {
			f, err := fh.Open()
			if err != nil {
				respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "could not read uploaded file", err)
				return
			}
			path, err := h.images.ProcessTourImage(f, id.Hex(), i+1)
			f.Close()
			if err != nil {
				respondImageError(w, err)
				return
			}
			paths = append(paths, path)
		}
		update["images"] = paths
	}

	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"provide imageCover and/or images files", nil)
		return
	}

	tour, err := h.db.UpdateTour(r.Context(), id, update)
	if err != nil {
		respondDBError(w, err, "tour")
		return
	}
	respondSuccess(w, http.StatusOK, tour, start)
}

// tourFromCreateRequest maps a validated create request to a tour document.
func tourFromCreateRequest(req *CreateTourRequest) (*models.Tour, error) {
	dates, err := parseStartDates(req.StartDates)
	if err != nil {
		return nil, err
	}
	guides, err := parseGuideIDs(req.Guides)
	if err != nil {
		return nil, err
	}

	tour := &models.Tour{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    dates,
		StartLocation: req.StartLocation.toGeoPoint(),
		Guides:        guides,
		SecretTour:    req.SecretTour,
	}
	for _, loc := range req.Locations {
		p := loc.toGeoPoint()
		tour.Locations = append(tour.Locations, *p)
	}
	return tour, nil
}

// tourUpdateFromRequest maps a validated partial update to a bson update
// document keyed by stored field names.
func tourUpdateFromRequest(req *UpdateTourRequest) (bson.M, error) {
	update := bson.M{}

	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Duration != nil {
		update["duration"] = *req.Duration
	}
	if req.MaxGroupSize != nil {
		update["max_group_size"] = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		update["difficulty"] = *req.Difficulty
	}
	if req.Price != nil {
		update["price"] = *req.Price
	}
	if req.PriceDiscount != nil {
		if req.Price != nil && *req.PriceDiscount >= *req.Price {
			return nil, fmt.Errorf("priceDiscount must be below price")
		}
		update["price_discount"] = *req.PriceDiscount
	}
	if req.Summary != nil {
		update["summary"] = *req.Summary
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.ImageCover != nil {
		update["image_cover"] = *req.ImageCover
	}
	if req.Images != nil {
		update["images"] = req.Images
	}
	if req.StartDates != nil {
		dates, err := parseStartDates(req.StartDates)
		if err != nil {
			return nil, err
		}
		update["start_dates"] = dates
	}
	if req.StartLocation != nil {
		update["start_location"] = req.StartLocation.toGeoPoint()
	}
	if req.Locations != nil {
		locs := make([]models.GeoPoint, 0, len(req.Locations))
		for _, loc := range req.Locations {
			locs = append(locs, *loc.toGeoPoint())
		}
		update["locations"] = locs
	}
	if req.Guides != nil {
		guides, err := parseGuideIDs(req.Guides)
		if err != nil {
			return nil, err
		}
		update["guides"] = guides
	}
	if req.SecretTour != nil {
		update["secret_tour"] = *req.SecretTour
	}

	return update, nil
}

// parseStartDates parses RFC 3339 date strings. Validation has already
// checked the format; this converts them.
func parseStartDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", s)
		}
		dates = append(dates, t.UTC())
	}
	return dates, nil
}

// parseGuideIDs converts hex guide IDs to ObjectIDs.
func parseGuideIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid guide id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
