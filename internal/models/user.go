// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles, ordered by privilege. Roles gate route access via the
// authorization layer; role can only be changed by an admin.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// ValidRoles lists all accepted role values.
var ValidRoles = []string{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an account document.
//
// The password hash, reset token fields, and active flag never serialize
// to JSON. Deactivated users (Active=false) are treated as nonexistent by
// authentication and by all user listings.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Photo    string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role     string             `bson:"role" json:"role"`
	Password string             `bson:"password" json:"-"`

	// PasswordChangedAt invalidates tokens issued before the change.
	PasswordChangedAt time.Time `bson:"password_changed_at,omitempty" json:"-"`

	// PasswordResetToken holds the SHA-256 hash of the issued reset token.
	PasswordResetToken   string    `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpires time.Time `bson:"password_reset_expires,omitempty" json:"-"`

	Active    bool      `bson:"active" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// PasswordChangedAfter reports whether the password was changed after the
// given token-issued-at time. Tokens issued before a password change are
// rejected.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// Truncate to seconds: JWT iat has second precision, and the hash is
	// written just before the stamp.
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}
