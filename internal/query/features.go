// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package query translates list-endpoint URL parameters into MongoDB
// filters and find options.
//
// Supported parameters:
//   - Field equality: ?difficulty=easy
//   - Comparison operators: ?price[lt]=1000&duration[gte]=5
//     (gte, gt, lte, lt map to their $-prefixed MongoDB operators)
//   - Sorting: ?sort=-price,ratings_average (leading - for descending)
//   - Projection: ?fields=name,price,duration
//   - Pagination: ?page=2&limit=10
//
// The reserved parameters (page, sort, limit, fields) never become filter
// conditions. Unknown fields pass through as exact-match conditions against
// whitelisted document fields; anything outside the whitelist is rejected
// so clients cannot probe internal fields.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reservedParams are control parameters that never become filter conditions.
var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// comparisonOps maps bracket operator suffixes to MongoDB operators.
var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Limits bounds pagination.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Options is the parsed result of a list query string: a MongoDB filter
// plus sort, projection, and pagination settings ready to apply to a Find.
type Options struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int
	Limit      int
}

// Skip returns the number of documents to skip for the requested page.
func (o *Options) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}

// FindOptions converts the parsed query into driver find options.
func (o *Options) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSkip(o.Skip()).
		SetLimit(int64(o.Limit))

	if len(o.Sort) > 0 {
		opts.SetSort(o.Sort)
	}
	if len(o.Projection) > 0 {
		opts.SetProjection(o.Projection)
	}

	return opts
}

// Parse builds Options from URL query parameters. allowedFields whitelists
// the document fields that may appear in filters, sorts, and projections;
// keys are the external (JSON) names, values the stored (BSON) names.
func Parse(values url.Values, allowedFields map[string]string, limits Limits) (*Options, error) {
	opts := &Options{
		Filter: bson.M{},
		Page:   1,
		Limit:  limits.DefaultPageSize,
	}

	if err := parseFilter(values, allowedFields, opts.Filter); err != nil {
		return nil, err
	}

	if sortParam := values.Get("sort"); sortParam != "" {
		sort, err := parseSort(sortParam, allowedFields)
		if err != nil {
			return nil, err
		}
		opts.Sort = sort
	}

	if fieldsParam := values.Get("fields"); fieldsParam != "" {
		projection, err := parseProjection(fieldsParam, allowedFields)
		if err != nil {
			return nil, err
		}
		opts.Projection = projection
	}

	if err := parsePagination(values, limits, opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// parseFilter extracts equality and bracket-operator conditions into filter.
func parseFilter(values url.Values, allowedFields map[string]string, filter bson.M) error {
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		value := vals[0]

		// price[lt]=1000 style operator
		if field, op, ok := splitBracketOp(key); ok {
			mongoOp, known := comparisonOps[op]
			if !known {
				return fmt.Errorf("unknown operator %q for field %q", op, field)
			}
			bsonField, allowed := allowedFields[field]
			if !allowed {
				return fmt.Errorf("cannot filter on field %q", field)
			}

			cond, isMap := filter[bsonField].(bson.M)
			if !isMap {
				cond = bson.M{}
				filter[bsonField] = cond
			}
			cond[mongoOp] = coerceValue(value)
			continue
		}

		if reservedParams[key] {
			continue
		}

		bsonField, allowed := allowedFields[key]
		if !allowed {
			return fmt.Errorf("cannot filter on field %q", key)
		}
		filter[bsonField] = coerceValue(value)
	}

	return nil
}

// splitBracketOp parses "price[lt]" into ("price", "lt", true).
func splitBracketOp(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 1 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

// coerceValue converts numeric and boolean strings to typed values so that
// comparisons work against numeric document fields.
func coerceValue(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseSort converts "-price,ratings_average" into a bson.D sort document.
// Order is preserved; a leading '-' means descending.
func parseSort(param string, allowedFields map[string]string) (bson.D, error) {
	var sort bson.D
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}

		bsonField, allowed := allowedFields[part]
		if !allowed {
			return nil, fmt.Errorf("cannot sort on field %q", part)
		}
		sort = append(sort, bson.E{Key: bsonField, Value: dir})
	}
	return sort, nil
}

// parseProjection converts "name,price" into an inclusion projection.
func parseProjection(param string, allowedFields map[string]string) (bson.M, error) {
	projection := bson.M{}
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		bsonField, allowed := allowedFields[part]
		if !allowed {
			return nil, fmt.Errorf("cannot select field %q", part)
		}
		projection[bsonField] = 1
	}
	return projection, nil
}

// parsePagination reads page and limit, clamping limit to the configured max.
func parsePagination(values url.Values, limits Limits, opts *Options) error {
	if pageParam := values.Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page %q (must be a positive integer)", pageParam)
		}
		opts.Page = page
	}

	if limitParam := values.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			return fmt.Errorf("invalid limit %q (must be a positive integer)", limitParam)
		}
		if limit > limits.MaxPageSize {
			limit = limits.MaxPageSize
		}
		opts.Limit = limit
	}

	return nil
}
