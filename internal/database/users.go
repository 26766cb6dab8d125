// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/trailhead/internal/metrics"
	"github.com/tomtom215/trailhead/internal/models"
	"github.com/tomtom215/trailhead/internal/query"
)

// UserFields whitelists the externally filterable/sortable user fields.
var UserFields = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// activeUserFilter merges the caller's filter with the soft-delete
// exclusion: deactivated users are invisible everywhere.
func activeUserFilter(filter bson.M) bson.M {
	merged := bson.M{"active": bson.M{"$ne": false}}
	for k, v := range filter {
		merged[k] = v
	}
	return merged
}

// CreateUser inserts a user. Email is lowercased before storage so the
// unique index is effectively case-insensitive.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	_, err := d.collection(CollUsers).InsertOne(opCtx, user)
	metrics.ObserveDBQuery("insert", CollUsers, start, err)
	return translateError(err)
}

// GetUser returns an active user by ID.
func (d *DB) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return d.findUser(ctx, activeUserFilter(bson.M{"_id": id}))
}

// GetUserByEmail returns an active user by email (case-insensitive).
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return d.findUser(ctx, activeUserFilter(bson.M{"email": email}))
}

// GetUserByResetToken returns the active user holding an unexpired reset
// token hash.
func (d *DB) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return d.findUser(ctx, activeUserFilter(bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": time.Now().UTC()},
	}))
}

func (d *DB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var user models.User
	err := d.collection(CollUsers).FindOne(opCtx, filter).Decode(&user)
	metrics.ObserveDBQuery("find_one", CollUsers, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// ListUsers returns active users matching the parsed query options.
func (d *DB) ListUsers(ctx context.Context, opts *query.Options) ([]models.User, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollUsers).Find(opCtx, activeUserFilter(opts.Filter), opts.FindOptions())
	if err != nil {
		metrics.ObserveDBQuery("find", CollUsers, start, err)
		return nil, translateError(err)
	}

	users := []models.User{}
	err = cursor.All(opCtx, &users)
	metrics.ObserveDBQuery("find", CollUsers, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// UsersByIDs returns the active users among ids, in no particular order.
// Used to resolve tour guide references on tour detail reads.
func (d *DB) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	cursor, err := d.collection(CollUsers).Find(opCtx,
		activeUserFilter(bson.M{"_id": bson.M{"$in": ids}}))
	if err != nil {
		metrics.ObserveDBQuery("find", CollUsers, start, err)
		return nil, translateError(err)
	}

	users := []models.User{}
	err = cursor.All(opCtx, &users)
	metrics.ObserveDBQuery("find", CollUsers, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// UpdateUser applies a partial update to an active user and returns the
// updated document. Callers are responsible for restricting which fields
// land in update; password changes must go through UpdateUserPassword.
func (d *DB) UpdateUser(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	if email, ok := update["email"].(string); ok {
		update["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	update["updated_at"] = time.Now().UTC()

	var user models.User
	err := d.collection(CollUsers).FindOneAndUpdate(
		opCtx,
		activeUserFilter(bson.M{"_id": id}),
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	metrics.ObserveDBQuery("update", CollUsers, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// UpdateUserPassword sets a new password hash, stamps the change time, and
// clears any outstanding reset token.
func (d *DB) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	res, err := d.collection(CollUsers).UpdateOne(
		opCtx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"password":            passwordHash,
				"password_changed_at": now,
				"updated_at":          now,
			},
			"$unset": bson.M{
				"password_reset_token":   "",
				"password_reset_expires": "",
			},
		},
	)
	metrics.ObserveDBQuery("update_password", CollUsers, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores a reset token hash with its expiry on the user.
func (d *DB) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollUsers).UpdateOne(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
		}},
	)
	metrics.ObserveDBQuery("set_reset_token", CollUsers, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetToken removes a user's outstanding reset token, if any.
func (d *DB) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	_, err := d.collection(CollUsers).UpdateOne(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		}},
	)
	metrics.ObserveDBQuery("clear_reset_token", CollUsers, start, err)
	return translateError(err)
}

// DeactivateUser soft-deletes a user by clearing the active flag. The
// document is retained; the user simply disappears from reads.
func (d *DB) DeactivateUser(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollUsers).UpdateOne(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}},
	)
	metrics.ObserveDBQuery("deactivate", CollUsers, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser hard-deletes a user document (admin only).
func (d *DB) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	res, err := d.collection(CollUsers).DeleteOne(opCtx, bson.M{"_id": id})
	metrics.ObserveDBQuery("delete", CollUsers, start, err)
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
