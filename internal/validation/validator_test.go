// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package validation

import (
	"strings"
	"testing"
)

type reviewRequest struct {
	Review string  `validate:"required,min=3"`
	Rating float64 `validate:"required,gte=1,lte=5"`
	Tour   string  `validate:"required,objectid"`
}

type tourRequest struct {
	Name       string  `validate:"required,min=10,max=40"`
	Difficulty string  `validate:"required,oneof=easy medium difficult"`
	Price      float64 `validate:"required,gt=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := reviewRequest{
		Review: "Wonderful trip, would go again",
		Rating: 4.5,
		Tour:   "5c88fa8cf4afda39709c2955",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid struct, got: %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{
			name:      "missing review text",
			input:     &reviewRequest{Rating: 3, Tour: "5c88fa8cf4afda39709c2955"},
			wantField: "Review",
			wantTag:   "required",
		},
		{
			name:      "rating too high",
			input:     &reviewRequest{Review: "great", Rating: 6, Tour: "5c88fa8cf4afda39709c2955"},
			wantField: "Rating",
			wantTag:   "lte",
		},
		{
			name:      "bad object id",
			input:     &reviewRequest{Review: "great", Rating: 3, Tour: "not-an-id"},
			wantField: "Tour",
			wantTag:   "objectid",
		},
		{
			name:      "name too short",
			input:     &tourRequest{Name: "Short", Difficulty: "easy", Price: 100},
			wantField: "Name",
			wantTag:   "min",
		},
		{
			name:      "unknown difficulty",
			input:     &tourRequest{Name: "The Forest Hiker", Difficulty: "extreme", Price: 100},
			wantField: "Difficulty",
			wantTag:   "oneof",
		},
		{
			name:      "zero price",
			input:     &tourRequest{Name: "The Forest Hiker", Difficulty: "easy", Price: 0},
			wantField: "Price",
			wantTag:   "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			found := false
			for _, fe := range err.Errors() {
				if fe.Field() == tt.wantField && fe.Tag() == tt.wantTag {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s tag %s, got: %v", tt.wantField, tt.wantTag, err)
			}
		})
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	err := ValidateStruct(&reviewRequest{Review: "great", Rating: 3, Tour: "zzz"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Tour") {
		t.Errorf("Message %q does not mention field", apiErr.Message)
	}
	if apiErr.Details["field"] != "Tour" {
		t.Errorf("Details[field] = %v", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	err := ValidateStruct(&reviewRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) != len(err.Errors()) {
		t.Errorf("fields count = %d, want %d", len(fields), len(err.Errors()))
	}
}

func TestTranslatedMessages(t *testing.T) {
	err := ValidateStruct(&tourRequest{Name: "The Forest Hiker", Difficulty: "extreme", Price: 50})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "must be one of") {
		t.Errorf("oneof message not translated: %q", msg)
	}
}
