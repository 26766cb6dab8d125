// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import "github.com/tomtom215/trailhead/internal/models"

// Request types carry validation tags consumed by go-playground/validator.
// JSON field names match the public API surface (camelCase).

// SignupRequest creates a new customer account. Role is never accepted
// here; privilege escalation requires an admin.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password reset flow using the
// plaintext token from the reset email.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,len=64,hexadecimal"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdatePasswordRequest changes the password of the authenticated user.
// The current password must be re-proven even with a valid session.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdateMeRequest updates the authenticated user's own profile. Only
// name and email are accepted; password changes go through
// UpdatePasswordRequest and roles through the admin endpoints.
type UpdateMeRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// AdminUpdateUserRequest is the admin-only user mutation. Password is
// deliberately absent; admins cannot set user passwords.
type AdminUpdateUserRequest struct {
	Name   string `json:"name" validate:"omitempty,min=2,max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool  `json:"active"`
}

// GeoPointRequest is a GeoJSON point in request bodies.
type GeoPointRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Day         int       `json:"day" validate:"omitempty,gte=0"`
}

// CreateTourRequest creates a tour. Guides are referenced by user ID.
type CreateTourRequest struct {
	Name          string            `json:"name" validate:"required,min=10,max=40"`
	Duration      int               `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int               `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    string            `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64           `json:"price" validate:"required,gt=0"`
	PriceDiscount float64           `json:"priceDiscount" validate:"omitempty,gte=0,ltfield=Price"`
	Summary       string            `json:"summary" validate:"required,max=500"`
	Description   string            `json:"description" validate:"omitempty,max=5000"`
	ImageCover    string            `json:"imageCover"`
	Images        []string          `json:"images" validate:"max=10"`
	StartDates    []string          `json:"startDates" validate:"omitempty,dive,datetime=2006-01-02T15:04:05Z07:00"`
	StartLocation *GeoPointRequest  `json:"startLocation"`
	Locations     []GeoPointRequest `json:"locations" validate:"max=20,dive"`
	Guides        []string          `json:"guides" validate:"max=10,dive,objectid"`
	SecretTour    bool              `json:"secretTour"`
}

// UpdateTourRequest partially updates a tour. Pointer fields distinguish
// absent from zero.
type UpdateTourRequest struct {
	Name          *string           `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int              `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int              `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *string           `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64          `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64          `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary       *string           `json:"summary" validate:"omitempty,max=500"`
	Description   *string           `json:"description" validate:"omitempty,max=5000"`
	ImageCover    *string           `json:"imageCover"`
	Images        []string          `json:"images" validate:"omitempty,max=10"`
	StartDates    []string          `json:"startDates" validate:"omitempty,dive,datetime=2006-01-02T15:04:05Z07:00"`
	StartLocation *GeoPointRequest  `json:"startLocation"`
	Locations     []GeoPointRequest `json:"locations" validate:"omitempty,max=20,dive"`
	Guides        []string          `json:"guides" validate:"omitempty,max=10,dive,objectid"`
	SecretTour    *bool             `json:"secretTour"`
}

// CreateReviewRequest creates a review. The tour comes from the nested
// route or the body; the author always comes from the session.
type CreateReviewRequest struct {
	Review string  `json:"review" validate:"required,min=1,max=2000"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Tour   string  `json:"tour" validate:"omitempty,objectid"`
}

// UpdateReviewRequest partially updates a review's text or rating. The
// tour and author bindings are immutable.
type UpdateReviewRequest struct {
	Review *string  `json:"review" validate:"omitempty,min=1,max=2000"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// CreateBookingRequest books a tour for a user. Price is always taken
// from the tour document, never from the client.
type CreateBookingRequest struct {
	Tour string `json:"tour" validate:"required,objectid"`
	User string `json:"user" validate:"omitempty,objectid"`
	Paid *bool  `json:"paid"`
}

// UpdateBookingRequest is the admin-only booking mutation.
type UpdateBookingRequest struct {
	Price *float64 `json:"price" validate:"omitempty,gt=0"`
	Paid  *bool    `json:"paid"`
}

// toGeoPoint converts a request point to the storage model. Coordinates
// are [longitude, latitude] per GeoJSON.
func (g *GeoPointRequest) toGeoPoint() *models.GeoPoint {
	if g == nil {
		return nil
	}
	return &models.GeoPoint{
		Type:        "Point",
		Coordinates: g.Coordinates,
		Address:     g.Address,
		Description: g.Description,
		Day:         g.Day,
	}
}
