// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package query

import (
	"net/url"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

var testFields = map[string]string{
	"name":           "name",
	"price":          "price",
	"duration":       "duration",
	"difficulty":     "difficulty",
	"ratingsAverage": "ratings_average",
}

var testLimits = Limits{DefaultPageSize: 20, MaxPageSize: 100}

func mustParse(t *testing.T, rawQuery string) *Options {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("bad query string %q: %v", rawQuery, err)
	}
	opts, err := Parse(values, testFields, testLimits)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", rawQuery, err)
	}
	return opts
}

func TestParseEqualityFilter(t *testing.T) {
	opts := mustParse(t, "difficulty=easy&duration=5")

	want := bson.M{"difficulty": "easy", "duration": float64(5)}
	if !reflect.DeepEqual(opts.Filter, want) {
		t.Errorf("Filter = %v, want %v", opts.Filter, want)
	}
}

func TestParseBracketOperators(t *testing.T) {
	opts := mustParse(t, "price[lt]=1000&price[gte]=400&duration[gte]=5")

	price, ok := opts.Filter["price"].(bson.M)
	if !ok {
		t.Fatalf("price condition type = %T", opts.Filter["price"])
	}
	if price["$lt"] != float64(1000) || price["$gte"] != float64(400) {
		t.Errorf("price condition = %v", price)
	}

	duration, ok := opts.Filter["duration"].(bson.M)
	if !ok || duration["$gte"] != float64(5) {
		t.Errorf("duration condition = %v", opts.Filter["duration"])
	}
}

func TestParseSortOrder(t *testing.T) {
	opts := mustParse(t, "sort=-price,ratingsAverage")

	want := bson.D{
		{Key: "price", Value: -1},
		{Key: "ratings_average", Value: 1},
	}
	if !reflect.DeepEqual(opts.Sort, want) {
		t.Errorf("Sort = %v, want %v", opts.Sort, want)
	}
}

func TestParseProjection(t *testing.T) {
	opts := mustParse(t, "fields=name,price")

	want := bson.M{"name": 1, "price": 1}
	if !reflect.DeepEqual(opts.Projection, want) {
		t.Errorf("Projection = %v, want %v", opts.Projection, want)
	}
}

func TestReservedParamsNotInFilter(t *testing.T) {
	opts := mustParse(t, "page=2&limit=10&sort=price&fields=name&difficulty=easy")

	if len(opts.Filter) != 1 {
		t.Errorf("Filter = %v, want only difficulty", opts.Filter)
	}
	if opts.Page != 2 || opts.Limit != 10 {
		t.Errorf("Page/Limit = %d/%d, want 2/10", opts.Page, opts.Limit)
	}
}

func TestPaginationDefaultsAndClamping(t *testing.T) {
	opts := mustParse(t, "")
	if opts.Page != 1 || opts.Limit != 20 {
		t.Errorf("defaults Page/Limit = %d/%d, want 1/20", opts.Page, opts.Limit)
	}

	opts = mustParse(t, "limit=500")
	if opts.Limit != 100 {
		t.Errorf("Limit = %d, want clamped to 100", opts.Limit)
	}

	opts = mustParse(t, "page=3&limit=10")
	if opts.Skip() != 20 {
		t.Errorf("Skip() = %d, want 20", opts.Skip())
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown filter field", "secret_tour=true"},
		{"unknown sort field", "sort=password"},
		{"unknown projection field", "fields=password"},
		{"unknown operator", "price[ne]=100"},
		{"bad page", "page=zero"},
		{"negative page", "page=-1"},
		{"bad limit", "limit=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad query string: %v", err)
			}
			if _, err := Parse(values, testFields, testLimits); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.query)
			}
		})
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"500", float64(500)},
		{"4.7", 4.7},
		{"true", true},
		{"easy", "easy"},
	}

	for _, tt := range tests {
		if got := coerceValue(tt.in); got != tt.want {
			t.Errorf("coerceValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
