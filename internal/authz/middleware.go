// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package authz

import (
	"net/http"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/logging"
)

// Require wraps a handler with a role-based permission check. It must run
// after the authentication middleware, which puts the user in the context.
func (e *Enforcer) Require(object, action string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				writeForbidden(w)
				return
			}

			allowed, err := e.Enforce(user.Role, object, action)
			if err != nil {
				logging.CtxErr(r.Context(), err).
					Str("role", user.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization check error")
				writeForbidden(w)
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Warn().
					Str("role", user.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				writeForbidden(w)
				return
			}

			next(w, r)
		}
	}
}

// writeForbidden emits a 403 in the standard envelope without importing
// the api package (avoids an import cycle).
func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	//nolint:errcheck // nothing to do about a failed error write
	w.Write([]byte(`{"status":"error","error":{"code":"AUTHORIZATION_ERROR","message":"you do not have permission to perform this action"}}`))
}
