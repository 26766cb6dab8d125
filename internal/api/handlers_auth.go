// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/metrics"
	"github.com/tomtom215/trailhead/internal/models"
)

// badCredentialsMsg is returned for every login failure mode so responses
// cannot be used to enumerate accounts.
const badCredentialsMsg = "incorrect email or password"

// setTokenCookie attaches the session JWT as an HttpOnly cookie.
func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Security.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// issueSession generates a JWT for the user, sets the cookie, and returns
// the login response body.
func (h *Handler) issueSession(w http.ResponseWriter, user *models.User) (*models.LoginResponse, error) {
	token, expiresAt, err := h.jwtManager.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}
	h.setTokenCookie(w, token, expiresAt)
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Signup handles POST /api/v1/users/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not process password", err)
		return
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondDBError(w, err, "account")
		return
	}

	// Welcome mail failures never block signup.
	if err := h.mailer.SendWelcome(r.Context(), user.Email, user.Name); err != nil {
		logging.CtxErr(r.Context(), err).Str("component", "api").Msg("welcome email failed")
	}

	resp, err := h.issueSession(w, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not create session", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", user.ID.Hex()).Msg("account created")
	respondSuccess(w, http.StatusCreated, resp, start)
}

// Login handles POST /api/v1/users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.loginLimiter.Allow(r.RemoteAddr) {
		metrics.AuthAttempts.WithLabelValues("rate_limited").Inc()
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"too many login attempts, try again later", nil)
		return
	}

	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	if h.lockout.IsLocked(req.Email) {
		metrics.AuthAttempts.WithLabelValues("locked_out").Inc()
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"account temporarily locked, try again later", nil)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Burn a bcrypt comparison so missing accounts take as long as
		// wrong passwords.
		auth.CheckPassword("$2a$12$xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", req.Password)
		h.lockout.RecordFailure(req.Email)
		metrics.AuthAttempts.WithLabelValues("bad_credentials").Inc()
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", badCredentialsMsg, nil)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		locked := h.lockout.RecordFailure(req.Email)
		metrics.AuthAttempts.WithLabelValues("bad_credentials").Inc()
		if locked {
			logging.Ctx(r.Context()).Info().Str("component", "api").
				Str("email", sanitizeLogValue(req.Email)).Msg("login lockout triggered")
		}
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", badCredentialsMsg, nil)
		return
	}

	if !user.Active {
		metrics.AuthAttempts.WithLabelValues("inactive").Inc()
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", badCredentialsMsg, nil)
		return
	}

	h.lockout.RecordSuccess(req.Email)
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	resp, err := h.issueSession(w, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not create session", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", user.ID.Hex()).Msg("login succeeded")
	respondSuccess(w, http.StatusOK, resp, start)
}

// Logout handles POST /api/v1/users/logout by expiring the session cookie.
// The JWT itself stays valid until expiry; clients must discard it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Security.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	respondSuccess(w, http.StatusOK, map[string]string{"message": "logged out"}, start)
}

// ForgotPassword handles POST /api/v1/users/forgot-password.
//
// The response is identical whether or not the email matches an account,
// so the endpoint cannot be used to probe for registered addresses.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	accepted := map[string]string{
		"message": "if that email is registered, a reset link has been sent",
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respondSuccess(w, http.StatusOK, accepted, start)
		return
	}

	plain, hash, err := auth.GenerateResetToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not issue reset token", err)
		return
	}

	ttl := h.config.Security.PasswordResetTTL
	expires := time.Now().UTC().Add(ttl)
	if err := h.db.SetResetToken(r.Context(), user.ID, hash, expires); err != nil {
		respondDBError(w, err, "account")
		return
	}
	metrics.PasswordResetsIssued.Inc()

	if err := h.mailer.SendPasswordReset(r.Context(), user.Email, user.Name, plain, ttl); err != nil {
		// The token is useless if it never reached the user; revoke it so
		// it does not linger as an attack surface.
		if clearErr := h.db.ClearResetToken(r.Context(), user.ID); clearErr != nil {
			logging.CtxErr(r.Context(), clearErr).Str("component", "api").Msg("reset token cleanup failed")
		}
		logging.CtxErr(r.Context(), err).Str("component", "api").Msg("password reset email failed")
	}

	respondSuccess(w, http.StatusOK, accepted, start)
}

// ResetPassword handles POST /api/v1/users/reset-password. The plaintext
// token from the email is hashed and matched against the stored hash; an
// expired or unknown token is rejected with a generic message.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	user, err := h.db.GetUserByResetToken(r.Context(), auth.HashResetToken(req.Token))
	if err != nil {
		respondError(w, http.StatusBadRequest, "AUTHENTICATION_ERROR",
			"reset token is invalid or has expired", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not process password", err)
		return
	}
	if err := h.db.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		respondDBError(w, err, "account")
		return
	}
	metrics.PasswordResetsCompleted.Inc()

	resp, err := h.issueSession(w, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not create session", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("component", "api").
		Str("user_id", user.ID.Hex()).Msg("password reset completed")
	respondSuccess(w, http.StatusOK, resp, start)
}

// UpdatePassword handles PATCH /api/v1/users/update-password for the
// authenticated user. The current password must be verified; all other
// sessions are invalidated via the password-changed-at check.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	var req UpdatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	if !auth.CheckPassword(user.Password, req.PasswordCurrent) {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "current password is incorrect", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not process password", err)
		return
	}
	if err := h.db.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		respondDBError(w, err, "account")
		return
	}

	resp, err := h.issueSession(w, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AUTHENTICATION_ERROR", "could not create session", err)
		return
	}

	respondSuccess(w, http.StatusOK, resp, start)
}
