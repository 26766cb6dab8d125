// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package mail sends transactional email (welcome, password reset) over
// SMTP. Deliveries run through a circuit breaker so a dead SMTP server
// cannot stall request handlers, and failures never leak to API clients:
// the password-reset flow responds identically whether or not mail left
// the building.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/metrics"
)

// dialTimeout bounds the SMTP connection attempt.
const dialTimeout = 30 * time.Second

// Mailer delivers transactional mail via SMTP behind a circuit breaker.
// When Enabled is false every send is a logged no-op, which keeps
// development environments working without an SMTP server.
type Mailer struct {
	cfg     *config.EmailConfig
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// New creates a Mailer from the email config.
func New(cfg *config.EmailConfig) *Mailer {
	settings := gobreaker.Settings{
		Name:    "smtp",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logger := logging.WithComponent("mail")
			logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("SMTP circuit breaker state change")
		},
	}

	return &Mailer{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// SendPasswordReset emails a reset link valid for the given duration.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string, validFor time.Duration) error {
	resetURL := m.cfg.ResetURLBase + token
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Forgot your password? Open the link below to choose a new one. "+
			"The link is valid for %d minutes.\r\n\r\n%s\r\n\r\n"+
			"If you didn't request a password reset, you can ignore this email.\r\n",
		name, int(validFor.Minutes()), resetURL)

	err := m.send(ctx, to, "Your password reset link (valid for "+
		fmt.Sprintf("%d", int(validFor.Minutes()))+" minutes)", body)
	recordResult("password_reset", err)
	return err
}

// SendWelcome emails a greeting to a new account.
func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome to Trailhead! We're glad to have you on board.\r\n",
		name)

	err := m.send(ctx, to, "Welcome to Trailhead", body)
	recordResult("welcome", err)
	return err
}

func recordResult(kind string, err error) {
	switch {
	case err == nil:
		metrics.MailSent.WithLabelValues(kind, "success").Inc()
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		metrics.MailSent.WithLabelValues(kind, "rejected").Inc()
	default:
		metrics.MailSent.WithLabelValues(kind, "failure").Inc()
	}
}

// send builds the message and pushes it through the breaker.
func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if !m.cfg.Enabled {
		logger := logging.WithComponent("mail")
		logger.Info().
			Str("to", to).
			Str("subject", subject).
			Msg("Email disabled; skipping delivery")
		return nil
	}

	msg := m.buildMessage(to, subject, body)

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.sendSMTP(ctx, to, msg)
	})
	if err != nil {
		logger := logging.WithComponent("mail")
		logger.Error().
			Err(err).
			Str("to", to).
			Msg("Email delivery failed")
	}
	return err
}

// buildMessage constructs the plain-text email with headers.
func (m *Mailer) buildMessage(to, subject, body string) string {
	var msg strings.Builder

	fromName := m.cfg.FromName
	if fromName == "" {
		fromName = "Trailhead"
	}

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.String()
}

// sendSMTP delivers one message over a fresh SMTP connection.
func (m *Mailer) sendSMTP(ctx context.Context, to, msg string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if m.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.SMTPUser != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.Password, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Quit failures after a delivered message are not worth surfacing.
	_ = client.Quit() //nolint:errcheck

	return nil
}
