// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/models"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	return e
}

func TestEnforceEmbeddedPolicy(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		// Tour management is restricted to admin and lead-guide
		{models.RoleAdmin, ObjectTours, ActionWrite, true},
		{models.RoleLeadGuide, ObjectTours, ActionWrite, true},
		{models.RoleGuide, ObjectTours, ActionWrite, false},
		{models.RoleUser, ObjectTours, ActionWrite, false},

		// Monthly plan includes guides
		{models.RoleGuide, ObjectTours, ActionPlan, true},
		{models.RoleLeadGuide, ObjectTours, ActionPlan, true},
		{models.RoleUser, ObjectTours, ActionPlan, false},

		// Only admins administer users
		{models.RoleAdmin, ObjectUsers, ActionManage, true},
		{models.RoleLeadGuide, ObjectUsers, ActionManage, false},

		// Customers create reviews; guides do not
		{models.RoleUser, ObjectReviews, ActionCreate, true},
		{models.RoleGuide, ObjectReviews, ActionCreate, false},
		{models.RoleAdmin, ObjectReviews, ActionCreate, false},

		// Review mutation: authors (checked in the handler) or admins
		{models.RoleUser, ObjectReviews, ActionMutate, true},
		{models.RoleAdmin, ObjectReviews, ActionMutate, true},
		{models.RoleGuide, ObjectReviews, ActionMutate, false},

		// Bookings
		{models.RoleAdmin, ObjectBookings, ActionManage, true},
		{models.RoleLeadGuide, ObjectBookings, ActionManage, true},
		{models.RoleUser, ObjectBookings, ActionManage, false},

		// Unknown role gets nothing
		{"stranger", ObjectTours, ActionWrite, false},
	}

	for _, tt := range tests {
		allowed, err := e.Enforce(tt.role, tt.object, tt.action)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) error: %v", tt.role, tt.object, tt.action, err)
		}
		if allowed != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, allowed, tt.want)
		}
	}
}

func TestRequireMiddleware(t *testing.T) {
	e := newTestEnforcer(t)

	handler := e.Require(ObjectTours, ActionWrite)(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"admin allowed", &models.User{Role: models.RoleAdmin}, http.StatusOK},
		{"lead-guide allowed", &models.User{Role: models.RoleLeadGuide}, http.StatusOK},
		{"customer forbidden", &models.User{Role: models.RoleUser}, http.StatusForbidden},
		{"unauthenticated forbidden", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/tours", nil)
			if tt.user != nil {
				r = r.WithContext(auth.ContextWithUser(context.Background(), tt.user))
			}

			rec := httptest.NewRecorder()
			handler(rec, r)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
