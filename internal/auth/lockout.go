// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/metrics"
)

// LockoutEntry tracks failed login attempts for a subject (email address).
type LockoutEntry struct {
	Subject        string
	FailedAttempts int
	LastAttempt    time.Time
	LockedUntil    time.Time
}

// IsLocked reports whether the entry is currently locked out.
func (e *LockoutEntry) IsLocked() bool {
	return time.Now().Before(e.LockedUntil)
}

// LockoutManager tracks failed logins per email and locks the identity out
// after too many consecutive failures. State is in-memory; entries expire
// and are swept by CleanupExpired, which the supervisor's janitor service
// runs periodically.
type LockoutManager struct {
	maxAttempts int
	duration    time.Duration
	enabled     bool

	mu      sync.Mutex
	entries map[string]*LockoutEntry
}

// NewLockoutManager creates a lockout manager from the security config.
func NewLockoutManager(cfg *config.SecurityConfig) *LockoutManager {
	return &LockoutManager{
		maxAttempts: cfg.LockoutMaxAttempts,
		duration:    cfg.LockoutDuration,
		enabled:     cfg.LockoutEnabled,
		entries:     make(map[string]*LockoutEntry),
	}
}

// normalizeSubject folds the subject so "User@Example.com" and
// "user@example.com" share one entry.
func normalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

// IsLocked reports whether the subject is currently locked out.
func (m *LockoutManager) IsLocked(subject string) bool {
	if !m.enabled {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[normalizeSubject(subject)]
	return ok && entry.IsLocked()
}

// RecordFailure records a failed login attempt. Returns true if the
// failure triggered a lockout.
func (m *LockoutManager) RecordFailure(subject string) bool {
	if !m.enabled {
		return false
	}

	key := normalizeSubject(subject)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &LockoutEntry{Subject: key}
		m.entries[key] = entry
	}

	entry.FailedAttempts++
	entry.LastAttempt = time.Now()

	if entry.FailedAttempts >= m.maxAttempts && !entry.IsLocked() {
		entry.LockedUntil = time.Now().Add(m.duration)
		metrics.AuthActiveLockouts.Inc()
		logger := logging.WithComponent("auth")
		logger.Warn().
			Str("subject", key).
			Int("failed_attempts", entry.FailedAttempts).
			Time("locked_until", entry.LockedUntil).
			Msg("Login identity locked out")
		return true
	}

	return false
}

// RecordSuccess clears the failure history for a subject after a
// successful login.
func (m *LockoutManager) RecordSuccess(subject string) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeSubject(subject)
	if entry, ok := m.entries[key]; ok {
		if entry.IsLocked() {
			metrics.AuthActiveLockouts.Dec()
		}
		delete(m.entries, key)
	}
}

// CleanupExpired removes entries whose lockout has expired and whose last
// attempt is older than the lockout duration. Returns the number removed.
func (m *LockoutManager) CleanupExpired() int {
	if !m.enabled {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range m.entries {
		if now.Before(entry.LockedUntil) {
			continue
		}
		if now.Sub(entry.LastAttempt) < m.duration {
			continue
		}
		if !entry.LockedUntil.IsZero() {
			metrics.AuthActiveLockouts.Dec()
		}
		delete(m.entries, key)
		removed++
	}

	return removed
}
