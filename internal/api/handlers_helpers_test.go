// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trailhead/internal/models"
)

func TestGenerateETagDeterministic(t *testing.T) {
	a := generateETag([]byte(`{"status":"success"}`))
	b := generateETag([]byte(`{"status":"success"}`))
	c := generateETag([]byte(`{"status":"error"}`))

	if a != b {
		t.Errorf("same input produced different ETags: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different inputs produced identical ETags")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"with\nnewline", `with\x0anewline`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"unicode ✓ ok", "unicode ✓ ok"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRespondSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondSuccess(rec, http.StatusOK, map[string]string{"hello": "world"}, time.Now())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if resp.Error != nil {
		t.Errorf("unexpected error in success envelope: %+v", resp.Error)
	}
}

func TestRespondErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusNotFound, "NOT_FOUND", "tour not found", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("status = %q, want error", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
	}
}

func TestDecodeBodyRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var dst LoginRequest
	if decodeBody(rec, req, &dst) {
		t.Fatal("decodeBody accepted malformed JSON")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		in      string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"34.111745,-118.113491", 34.111745, -118.113491, false},
		{"0,0", 0, 0, false},
		{" 45.0 , 7.5 ", 45.0, 7.5, false},
		{"34.111745", 0, 0, true},
		{"abc,-118", 0, 0, true},
		{"95,-118", 0, 0, true},
		{"45,200", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		lat, lng, err := parseLatLng(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLatLng(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLatLng(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if lat != tt.lat || lng != tt.lng {
			t.Errorf("parseLatLng(%q) = (%v, %v), want (%v, %v)", tt.in, lat, lng, tt.lat, tt.lng)
		}
	}
}

func TestParseUnit(t *testing.T) {
	for _, valid := range []string{"mi", "km"} {
		if _, err := parseUnit(valid); err != nil {
			t.Errorf("parseUnit(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "miles", "KM", "m"} {
		if _, err := parseUnit(invalid); err == nil {
			t.Errorf("parseUnit(%q) expected error", invalid)
		}
	}
}

func TestValidateRequestSignup(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: SignupRequest{
				Name: "Alice Walker", Email: "alice@example.com",
				Password: "supersecret", PasswordConfirm: "supersecret",
			},
		},
		{
			name: "mismatched confirmation",
			req: SignupRequest{
				Name: "Alice Walker", Email: "alice@example.com",
				Password: "supersecret", PasswordConfirm: "different",
			},
			wantErr: true,
		},
		{
			name: "short password",
			req: SignupRequest{
				Name: "Alice Walker", Email: "alice@example.com",
				Password: "short", PasswordConfirm: "short",
			},
			wantErr: true,
		},
		{
			name: "bad email",
			req: SignupRequest{
				Name: "Alice Walker", Email: "not-an-email",
				Password: "supersecret", PasswordConfirm: "supersecret",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(&tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %+v", err)
			}
		})
	}
}

func TestValidateRequestCreateTour(t *testing.T) {
	valid := CreateTourRequest{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   "easy",
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
	}
	if err := validateRequest(&valid); err != nil {
		t.Fatalf("valid tour rejected: %+v", err)
	}

	badDifficulty := valid
	badDifficulty.Difficulty = "extreme"
	if err := validateRequest(&badDifficulty); err == nil {
		t.Error("invalid difficulty accepted")
	}

	shortName := valid
	shortName.Name = "Short"
	if err := validateRequest(&shortName); err == nil {
		t.Error("too-short name accepted")
	}

	badGuide := valid
	badGuide.Guides = []string{"not-an-objectid"}
	if err := validateRequest(&badGuide); err == nil {
		t.Error("invalid guide id accepted")
	}
}

func TestValidateRequestReviewRatingBounds(t *testing.T) {
	for _, rating := range []float64{1, 3.5, 5} {
		req := CreateReviewRequest{Review: "Great tour", Rating: rating}
		if err := validateRequest(&req); err != nil {
			t.Errorf("rating %v rejected: %+v", rating, err)
		}
	}
	for _, rating := range []float64{0, 0.5, 5.5, -1} {
		req := CreateReviewRequest{Review: "Great tour", Rating: rating}
		if err := validateRequest(&req); err == nil {
			t.Errorf("rating %v accepted", rating)
		}
	}
}
