// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package services

import (
	"context"
	"time"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/logging"
)

// defaultJanitorInterval balances memory reclamation against wakeup
// churn; lockout windows are minutes long, so sweeping faster buys nothing.
const defaultJanitorInterval = 5 * time.Minute

// JanitorService periodically sweeps expired login lockouts and idle
// per-IP login limiters so their in-memory maps cannot grow without
// bound under credential-stuffing traffic.
type JanitorService struct {
	lockout  *auth.LockoutManager
	limiter  *auth.LoginLimiter
	interval time.Duration
}

// NewJanitorService creates the cleanup loop. A non-positive interval
// falls back to the default.
func NewJanitorService(lockout *auth.LockoutManager, limiter *auth.LoginLimiter, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	return &JanitorService{
		lockout:  lockout,
		limiter:  limiter,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	log := logging.WithComponent("janitor")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removedLockouts := j.lockout.CleanupExpired()
			removedLimiters := j.limiter.CleanupIdle(j.interval)
			if removedLockouts > 0 || removedLimiters > 0 {
				log.Debug().
					Int("expired_lockouts", removedLockouts).
					Int("idle_limiters", removedLimiters).
					Msg("cleanup sweep completed")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (j *JanitorService) String() string {
	return "auth-janitor"
}
