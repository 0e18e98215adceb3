// Package notify reacts to domain events with user-facing notifications.
// It is the only bridge between the event bus and the background task queue.
package notify

import (
	"context"
	"fmt"

	"learnhub_backend/internal/events"
	"learnhub_backend/internal/scheduler"
	"learnhub_backend/platform/logger"
)

// Module subscribes to domain events and enqueues notification tasks.
type Module struct {
	enqueuer scheduler.Enqueuer
	log      *logger.Logger
}

// NewModule creates the notify module. enqueuer may be nil when the task
// queue is not configured; events are then logged and dropped.
func NewModule(enqueuer scheduler.Enqueuer, log *logger.Logger) *Module {
	return &Module{enqueuer: enqueuer, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserRegistered{}.EventName(), m)

	m.log.Info("notify module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserRegistered:
		return m.handleUserRegistered(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleUserRegistered(ctx context.Context, e events.UserRegistered) error {
	if m.enqueuer == nil {
		m.log.Debug("task queue disabled, dropping welcome email", "user_id", e.UserID.String())
		return nil
	}

	err := m.enqueuer.EnqueueWelcomeEmail(ctx, scheduler.WelcomeEmailPayload{
		UserID: e.UserID.String(),
		Email:  e.Email,
		Name:   e.Name,
	})
	if err != nil {
		return fmt.Errorf("enqueue welcome email: %w", err)
	}
	m.log.Info("welcome email queued", "user_id", e.UserID.String())

	if e.VerificationToken != "" {
		err := m.enqueuer.EnqueueVerificationEmail(ctx, scheduler.VerificationEmailPayload{
			UserID: e.UserID.String(),
			Email:  e.Email,
			Name:   e.Name,
			Token:  e.VerificationToken,
		})
		if err != nil {
			return fmt.Errorf("enqueue verification email: %w", err)
		}
		m.log.Info("verification email queued", "user_id", e.UserID.String())
	}

	return nil
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
