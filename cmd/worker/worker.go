package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/portfoliohub/backend/internal/notifications"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Dialer sends prepared messages; *mail.Dialer satisfies it
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// EmailWorker delivers email:send tasks over SMTP
type EmailWorker struct {
	logger *zap.Logger
	dialer Dialer
	from   string
}

// NewEmailWorker creates a new email worker
func NewEmailWorker(logger *zap.Logger, dialer Dialer, from string) *EmailWorker {
	return &EmailWorker{
		logger: logger,
		dialer: dialer,
		from:   from,
	}
}

// HandleEmailTask processes an email:send task.
// A malformed payload is never retried.
func (w *EmailWorker) HandleEmailTask(ctx context.Context, t *asynq.Task) error {
	payload, err := notifications.ParseEmailPayload(t)
	if err != nil {
		w.logger.Error("Invalid email task payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.sendEmail(payload.To, payload.Subject, payload.Body); err != nil {
		w.logger.Error("Failed to send email",
			zap.String("to", payload.To),
			zap.String("subject", payload.Subject),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("Email sent", zap.String("to", payload.To), zap.String("subject", payload.Subject))
	return nil
}

// sendEmail sends an email using gopkg.in/mail.v2
func (w *EmailWorker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := w.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
