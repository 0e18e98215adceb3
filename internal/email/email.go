// Package email delivers transactional mail over SMTP.
package email

import (
	"context"

	"learnhub_backend/platform/logger"
)

// Sender delivers the platform's transactional emails.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendVerificationEmail(ctx context.Context, toEmail, name, verifyURL string) error
}

// NoopSender is used when SMTP is not configured. Deliveries are logged and
// dropped so the rest of the system behaves the same with or without email.
type NoopSender struct {
	log *logger.Logger
}

// NewNoopSender creates a sender that drops all mail.
func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	s.log.Debug("email disabled, dropping welcome email", "to", toEmail)
	return nil
}

func (s *NoopSender) SendVerificationEmail(ctx context.Context, toEmail, name, verifyURL string) error {
	s.log.Debug("email disabled, dropping verification email", "to", toEmail)
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*NoopSender)(nil)
)
