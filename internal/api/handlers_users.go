// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/database"
	"github.com/tomtom215/trailhead/internal/images"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/models"
)

// Me handles GET /api/v1/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// UpdateMe handles PATCH /api/v1/users/update-me. Only name and email may
// change here; password updates have their own endpoint so they cannot
// slip past the current-password check.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	// Reject bodies that try to smuggle a password change through the
	// profile endpoint.
	var probe map[string]json.RawMessage
	if !decodeBody(w, r, &probe) {
		return
	}
	if _, ok := probe["password"]; ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"this route is not for password updates, use /update-password", nil)
		return
	}

	raw, err := json.Marshal(probe)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	var req UpdateMeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		update["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "nothing to update", nil)
		return
	}

	updated, err := h.db.UpdateUser(r.Context(), user.ID, update)
	if err != nil {
		respondDBError(w, err, "account")
		return
	}
	respondSuccess(w, http.StatusOK, updated, start)
}

// DeleteMe handles DELETE /api/v1/users/me. The account is deactivated,
// not removed, so reviews and bookings keep their referential integrity.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	if err := h.db.DeactivateUser(r.Context(), user.ID); err != nil {
		respondDBError(w, err, "account")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", user.ID.Hex()).Msg("account deactivated")
	w.WriteHeader(http.StatusNoContent)
}

// UploadUserPhoto handles POST /api/v1/users/me/photo with a multipart
// form carrying a "photo" field. The image is resized to a square
// thumbnail and the user's photo path updated.
func (h *Handler) UploadUserPhoto(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	if err := r.ParseMultipartForm(h.config.Uploads.MaxSizeBytes); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form", err)
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "photo field is required", nil)
		return
	}
	defer file.Close()

	path, err := h.images.ProcessUserPhoto(file, user.ID.Hex())
	if err != nil {
		respondImageError(w, err)
		return
	}

	updated, err := h.db.UpdateUser(r.Context(), user.ID, bson.M{"photo": path})
	if err != nil {
		respondDBError(w, err, "account")
		return
	}
	respondSuccess(w, http.StatusOK, updated, start)
}

// respondImageError maps image processing errors to HTTP responses.
func respondImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, images.ErrTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "image exceeds the size limit", nil)
	case errors.Is(err, images.ErrNotAnImage):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file is not a supported image", nil)
	default:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "image processing failed", err)
	}
}

// ListUsers handles GET /api/v1/users (admin only).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := h.parseListQuery(w, r, database.UserFields)
	if opts == nil {
		return
	}

	users, err := h.db.ListUsers(r.Context(), opts)
	if err != nil {
		respondDBError(w, err, "users")
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Results: len(users), Items: users}, start)
}

// GetUser handles GET /api/v1/users/{id} (admin only).
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.db.GetUser(r.Context(), id)
	if err != nil {
		respondDBError(w, err, "user")
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// UpdateUser handles PATCH /api/v1/users/{id} (admin only). Role changes
// happen here and nowhere else.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req AdminUpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		update["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		if !models.IsValidRole(req.Role) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid role", nil)
			return
		}
		update["role"] = req.Role
	}
	if req.Active != nil {
		update["active"] = *req.Active
	}
	if len(update) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "nothing to update", nil)
		return
	}

	user, err := h.db.UpdateUser(r.Context(), id, update)
	if err != nil {
		respondDBError(w, err, "user")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", id.Hex()).Msg("user updated by admin")
	respondSuccess(w, http.StatusOK, user, start)
}

// DeleteUser handles DELETE /api/v1/users/{id} (admin only). This is a
// hard delete, unlike the self-service deactivation.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		respondDBError(w, err, "user")
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", id.Hex()).Msg("user deleted by admin")
	w.WriteHeader(http.StatusNoContent)
}
