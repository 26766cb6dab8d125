// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/trailhead/internal/config"
)

func TestBuildMessageHeaders(t *testing.T) {
	m := New(&config.EmailConfig{
		From:     "noreply@trailhead.example",
		FromName: "Trailhead",
	})

	msg := m.buildMessage("user@example.com", "Hello", "Body text")

	for _, want := range []string{
		"From: Trailhead <noreply@trailhead.example>\r\n",
		"To: user@example.com\r\n",
		"Subject: Hello\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"Body text",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// Headers and body separated by a blank line
	if !strings.Contains(msg, "\r\n\r\nBody text") {
		t.Error("missing header/body separator")
	}
}

func TestDisabledMailerIsNoOp(t *testing.T) {
	m := New(&config.EmailConfig{Enabled: false})

	if err := m.SendWelcome(context.Background(), "user@example.com", "User"); err != nil {
		t.Errorf("disabled mailer returned error: %v", err)
	}
	if err := m.SendPasswordReset(context.Background(), "user@example.com", "User", "tok", 10*time.Minute); err != nil {
		t.Errorf("disabled mailer returned error: %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	// Point at a port nothing listens on; the dial timeout does not apply
	// because connection refused fails immediately.
	m := New(&config.EmailConfig{
		Enabled:  true,
		SMTPHost: "127.0.0.1",
		SMTPPort: 1, // reserved port, nothing listening
		From:     "noreply@trailhead.example",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var lastErr error
	for i := 0; i < 5; i++ {
		lastErr = m.SendWelcome(ctx, "user@example.com", "User")
		if lastErr == nil {
			t.Fatal("send to dead server succeeded")
		}
	}

	// After three consecutive failures the breaker should be open and
	// rejecting without dialing.
	if !strings.Contains(lastErr.Error(), "open") {
		t.Errorf("expected circuit breaker open error, got: %v", lastErr)
	}
}
