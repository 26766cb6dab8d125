// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/models"
)

// CreateBooking handles POST /api/v1/bookings. Regular users always book
// for themselves; admins and lead guides may record a booking on behalf
// of another user. The price is copied from the tour document, never
// taken from the client.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	var req CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	tourID, err := primitive.ObjectIDFromHex(req.Tour)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid tour id", nil)
		return
	}

	tour, err := h.db.GetTour(r.Context(), tourID, false)
	if err != nil {
		respondDBError(w, err, "tour")
		return
	}

	bookingUser := user.ID
	if req.User != "" && req.User != user.ID.Hex() {
		if user.Role != models.RoleAdmin && user.Role != models.RoleLeadGuide {
			respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR",
				"you can only book for yourself", nil)
			return
		}
		id, err := primitive.ObjectIDFromHex(req.User)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id", nil)
			return
		}
		if _, err := h.db.GetUser(r.Context(), id); err != nil {
			respondDBError(w, err, "user")
			return
		}
		bookingUser = id
	}

	price := tour.Price
	if tour.PriceDiscount > 0 && tour.PriceDiscount < tour.Price {
		price = tour.PriceDiscount
	}

	booking := &models.Booking{
		Tour:  tourID,
		User:  bookingUser,
		Price: price,
		Paid:  true,
	}
	if req.Paid != nil {
		booking.Paid = *req.Paid
	}

	if err := h.db.CreateBooking(r.Context(), booking); err != nil {
		respondDBError(w, err, "booking")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("booking_id", booking.ID.Hex()).Str("tour_id", tourID.Hex()).Msg("booking created")
	respondSuccess(w, http.StatusCreated, booking, start)
}

// ListMyBookings handles GET /api/v1/bookings/me: the authenticated
// user's own bookings.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	opts := h.parseListQuery(w, r, database.BookingFields)
	if opts == nil {
		return
	}

	bookings, err := h.db.ListBookings(r.Context(), &user.ID, opts)
	if err != nil {
		respondDBError(w, err, "bookings")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(bookings), Items: bookings}, start)
}

// ListBookings handles GET /api/v1/bookings (admin or lead-guide).
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := h.parseListQuery(w, r, database.BookingFields)
	if opts == nil {
		return
	}

	bookings, err := h.db.ListBookings(r.Context(), nil, opts)
	if err != nil {
		respondDBError(w, err, "bookings")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(bookings), Items: bookings}, start)
}

// GetBooking handles GET /api/v1/bookings/{id}. Regular users may only
// read their own bookings.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
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

	booking, err := h.db.GetBooking(r.Context(), id)
	if err != nil {
		respondDBError(w, err, "booking")
		return
	}

	if booking.User != user.ID && user.Role != models.RoleAdmin && user.Role != models.RoleLeadGuide {
		// Hide existence from other users.
		respondError(w, http.StatusNotFound, "NOT_FOUND", "booking not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, booking, start)
}

// UpdateBooking handles PATCH /api/v1/bookings/{id} (admin or lead-guide).
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	update := bson.M{}
	if req.Price != nil {
		update["price"] = *req.Price
	}
	if req.Paid != nil {
		update["paid"] = *req.Paid
	}
	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "nothing to update", nil)
		return
	}

	booking, err := h.db.UpdateBooking(r.Context(), id, update)
	if err != nil {
		respondDBError(w, err, "booking")
		return
	}
	respondSuccess(w, http.StatusOK, booking, start)
}

// DeleteBooking handles DELETE /api/v1/bookings/{id} (admin or lead-guide).
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.db.DeleteBooking(r.Context(), id); err != nil {
		respondDBError(w, err, "booking")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("booking_id", id.Hex()).Msg("booking deleted")
	w.WriteHeader(http.StatusNoContent)
}
