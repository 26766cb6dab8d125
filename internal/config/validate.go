// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum length for the JWT signing secret.
const minJWTSecretLength = 32

// Validate checks the configuration for invalid or insecure values.
// It is called by Load after all layers have been merged.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URI == "" {
		errs = append(errs, "database.uri must not be empty (set MONGO_URI)")
	}
	if c.Database.Database == "" {
		errs = append(errs, "database.database must not be empty")
	}
	if c.Database.Timeout <= 0 {
		errs = append(errs, "database.timeout must be positive")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Sprintf("server.environment must be development, production, or test, got %q", c.Server.Environment))
	}

	if c.API.DefaultPageSize < 1 {
		errs = append(errs, "api.default_page_size must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		errs = append(errs, "api.max_page_size must be >= api.default_page_size")
	}

	if c.Server.Environment == "production" && len(c.Security.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("security.jwt_secret must be at least %d characters in production (set JWT_SECRET)", minJWTSecretLength))
	}
	if c.Security.SessionTimeout <= 0 {
		errs = append(errs, "security.session_timeout must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Sprintf("security.bcrypt_cost must be 4-31, got %d", c.Security.BcryptCost))
	}
	if c.Security.PasswordResetTTL <= 0 {
		errs = append(errs, "security.password_reset_ttl must be positive")
	}
	if c.Security.CookieName == "" {
		errs = append(errs, "security.cookie_name must not be empty")
	}
	if c.Security.LockoutEnabled && c.Security.LockoutMaxAttempts < 1 {
		errs = append(errs, "security.lockout_max_attempts must be at least 1 when lockout is enabled")
	}

	if c.Uploads.MaxSizeBytes < 1 {
		errs = append(errs, "uploads.max_size_bytes must be positive")
	}
	if c.Uploads.JPEGQuality < 1 || c.Uploads.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("uploads.jpeg_quality must be 1-100, got %d", c.Uploads.JPEGQuality))
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			errs = append(errs, "email.smtp_host must not be empty when email is enabled")
		}
		if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
			errs = append(errs, fmt.Sprintf("email.smtp_port must be 1-65535, got %d", c.Email.SMTPPort))
		}
		if c.Email.From == "" {
			errs = append(errs, "email.from must not be empty when email is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ListenAddr returns the host:port address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
