// Package notifications delivers outbound email through the asynq task queue.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task routing
const (
	TypeEmailSend      = "email:send"
	QueueNotifications = "notifications"
)

// EmailPayload is the JSON body of an email:send task
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier sends a message to a single recipient
type Notifier interface {
	// Send delivers a message
	//
	// "to" parameter is the recipient email address.
	// "subject" and "body" parameters are the message contents.
	//
	// If the message cannot be handed off, the error will be returned.
	Send(ctx context.Context, to, subject, body string) error
}

// TaskEnqueuer is the subset of *asynq.Client used to enqueue tasks
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier implements Notifier by enqueueing email:send tasks for the worker
type QueueNotifier struct {
	client TaskEnqueuer
	logger *zap.Logger
}

// NewQueueNotifier creates a notifier on top of an asynq client
func NewQueueNotifier(client TaskEnqueuer, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{
		client: client,
		logger: logger,
	}
}

// Send enqueues the message. Tasks are never retried.
func (n *QueueNotifier) Send(ctx context.Context, to, subject, body string) error {
	task, err := NewEmailTask(EmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	info, err := n.client.EnqueueContext(ctx, task, asynq.Queue(QueueNotifications), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	n.logger.Debug("email enqueued", zap.String("task_id", info.ID), zap.String("subject", subject))
	return nil
}

// NewEmailTask builds an email:send task from the payload
func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.To) == "" {
		return nil, fmt.Errorf("email recipient is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email payload: %w", err)
	}
	return asynq.NewTask(TypeEmailSend, data), nil
}

// ParseEmailPayload decodes the payload of an email:send task
func ParseEmailPayload(task *asynq.Task) (*EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode email payload: %w", err)
	}
	if payload.To == "" {
		return nil, fmt.Errorf("email recipient is required")
	}
	return &payload, nil
}
