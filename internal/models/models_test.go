// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "The Forest Hiker", "the-forest-hiker"},
		{"punctuation", "Sea & Sky: Explorer!", "sea-sky-explorer"},
		{"multiple spaces", "The   Snow  Adventurer", "the-snow-adventurer"},
		{"leading trailing", "  The Park Camper  ", "the-park-camper"},
		{"digits", "Top 10 Peaks", "top-10-peaks"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDurationWeeks(t *testing.T) {
	tour := Tour{Duration: 14}
	if got := tour.DurationWeeks(); got != 2 {
		t.Errorf("DurationWeeks() = %v, want 2", got)
	}

	tour.Duration = 10
	if got := tour.DurationWeeks(); got < 1.42 || got > 1.43 {
		t.Errorf("DurationWeeks() = %v, want ~1.428", got)
	}
}

func TestUserJSONHidesSensitiveFields(t *testing.T) {
	u := User{
		Name:                 "Test User",
		Email:                "test@example.com",
		Role:                 RoleUser,
		Password:             "$2a$12$notarealhash",
		PasswordResetToken:   "deadbeef",
		PasswordResetExpires: time.Now(),
		Active:               true,
	}

	data, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	out := string(data)
	for _, forbidden := range []string{"notarealhash", "deadbeef", "password", "active", "reset"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("serialized user leaks %q: %s", forbidden, out)
		}
	}
	if !strings.Contains(out, "test@example.com") {
		t.Errorf("serialized user missing email: %s", out)
	}
}

func TestTourJSONHidesSecretFlag(t *testing.T) {
	tour := Tour{Name: "The Hidden Valley", SecretTour: true}

	data, err := json.Marshal(&tour)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "secret") {
		t.Errorf("serialized tour leaks secret flag: %s", data)
	}
}

func TestPasswordChangedAfter(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		changedAt time.Time
		issuedAt  time.Time
		want      bool
	}{
		{"never changed", time.Time{}, base, false},
		{"changed before issue", base.Add(-time.Hour), base, false},
		{"changed after issue", base.Add(time.Hour), base, true},
		{"changed same second", base.Add(500 * time.Millisecond), base, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{PasswordChangedAt: tt.changedAt}
			if got := u.PasswordChangedAfter(tt.issuedAt); got != tt.want {
				t.Errorf("PasswordChangedAfter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "superadmin", "Admin", "lead_guide"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true", role)
		}
	}
}
