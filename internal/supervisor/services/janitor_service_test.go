// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/trailhead/internal/auth"
	"github.com/tomtom215/trailhead/internal/config"
)

func testJanitor(interval time.Duration) *JanitorService {
	lockout := auth.NewLockoutManager(&config.SecurityConfig{
		LockoutEnabled:     true,
		LockoutMaxAttempts: 3,
		LockoutDuration:    time.Minute,
	})
	limiter := auth.NewLoginLimiter(5, time.Minute)
	return NewJanitorService(lockout, limiter, interval)
}

func TestJanitorServiceStopsOnCancel(t *testing.T) {
	svc := testJanitor(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Let a few sweeps run before stopping.
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestJanitorServiceDefaults(t *testing.T) {
	svc := testJanitor(0)
	if svc.interval != defaultJanitorInterval {
		t.Errorf("interval = %v, want %v", svc.interval, defaultJanitorInterval)
	}
	if svc.String() != "auth-janitor" {
		t.Errorf("String() = %q", svc.String())
	}
}
