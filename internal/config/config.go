// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Uploads  UploadsConfig  `koanf:"uploads"`
	Email    EmailConfig    `koanf:"email"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds MongoDB connection settings.
//
// Environment Variables:
//   - MONGO_URI: Connection string (e.g., mongodb://localhost:27017)
//   - MONGO_DATABASE: Database name (default: trailhead)
//   - MONGO_TIMEOUT: Per-operation timeout (default: 10s)
type DatabaseConfig struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`

	// MaxPoolSize limits the driver's connection pool (0 = driver default).
	MaxPoolSize uint64 `koanf:"max_pool_size"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// APIConfig holds API pagination and response limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication, rate limiting, and CORS settings.
//
// JWT_SECRET must be at least 32 characters. Tokens are issued as HTTP-only
// cookies and accepted from either the cookie or an Authorization header.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// CookieName is the name of the JWT cookie set on login.
	CookieName string `koanf:"cookie_name"`

	// BcryptCost is the bcrypt work factor for password hashing (4-31).
	BcryptCost int `koanf:"bcrypt_cost"`

	// PasswordResetTTL bounds the validity of password reset tokens.
	PasswordResetTTL time.Duration `koanf:"password_reset_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`

	// Lockout settings for repeated failed logins.
	LockoutEnabled     bool          `koanf:"lockout_enabled"`
	LockoutMaxAttempts int           `koanf:"lockout_max_attempts"`
	LockoutDuration    time.Duration `koanf:"lockout_duration"`
}

// UploadsConfig holds image upload settings.
//
// Uploaded tour and user images are decoded, resized, and re-encoded as JPEG
// before being written under Dir. The directory is served at /uploads/.
type UploadsConfig struct {
	Dir          string `koanf:"dir"`
	MaxSizeBytes int64  `koanf:"max_size_bytes"`
	JPEGQuality  int    `koanf:"jpeg_quality"`
}

// EmailConfig holds SMTP settings for transactional mail (password reset).
type EmailConfig struct {
	Enabled  bool   `koanf:"enabled"`
	SMTPHost string `koanf:"smtp_host"`
	SMTPPort int    `koanf:"smtp_port"`
	SMTPUser string `koanf:"smtp_user"`
	Password string `koanf:"smtp_password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
	UseTLS   bool   `koanf:"use_tls"`

	// ResetURLBase is prepended to reset tokens in outgoing mail,
	// e.g. https://example.com/reset-password/.
	ResetURLBase string `koanf:"reset_url_base"`
}

// LoggingConfig holds log level and format settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
