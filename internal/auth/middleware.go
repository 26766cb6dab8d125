// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/models"
)

type contextKey string

// userContextKey holds the authenticated *models.User.
const userContextKey contextKey = "auth_user"

// Authentication errors surfaced to the error responder.
var (
	ErrNoToken         = errors.New("you are not logged in")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrUserGone        = errors.New("the user belonging to this token no longer exists")
	ErrPasswordChanged = errors.New("password was changed after this token was issued; log in again")
)

// UserLoader loads users for token validation. Implemented by *database.DB.
type UserLoader interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Middleware authenticates requests from a JWT carried in either the
// Authorization header (Bearer scheme) or the session cookie, loads the
// current user, and rejects tokens issued before the user's last password
// change. Deactivated users fail the load and are treated as gone.
type Middleware struct {
	jwt        *JWTManager
	users      UserLoader
	cookieName string
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwt *JWTManager, users UserLoader, cookieName string) *Middleware {
	return &Middleware{jwt: jwt, users: users, cookieName: cookieName}
}

// Authenticate wraps a handler, requiring a valid token. On success the
// authenticated user is stored in the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		next(w, r.WithContext(ContextWithUser(r.Context(), user)))
	}
}

// authenticate resolves the request's token to a live user.
func (m *Middleware) authenticate(r *http.Request) (*models.User, error) {
	tokenString := m.extractToken(r)
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims, err := m.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := m.users.GetUser(r.Context(), userID)
	if err != nil {
		return nil, ErrUserGone
	}

	if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, ErrPasswordChanged
	}

	return user, nil
}

// extractToken pulls the JWT from the Authorization header or, failing
// that, the session cookie.
func (m *Middleware) extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(m.cookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// writeAuthError emits a minimal 401 in the standard envelope without
// importing the api package (avoids an import cycle).
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // nothing to do about a failed error write
	w.Write([]byte(`{"status":"error","error":{"code":"AUTHENTICATION_ERROR","message":"` + err.Error() + `"}}`))
}

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user, or nil if the request
// was not authenticated.
func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		logging.Debug().Msg("UserFromContext called on unauthenticated request")
		return nil
	}
	return user
}
