package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments where no broker is configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserLoggedIn logs auth.user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"email":     logger.MaskEmail(event.Email),
		"logged_at": event.LoggedAt,
	}
	p.logEvent("auth.user.logged_in", event.UserID, event.LoggedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
	}
	p.logEvent("auth.user.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs auth.user.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"requested_at": event.RequestedAt,
	}
	p.logEvent("auth.user.password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishExportDispatched logs exports.job.dispatched events.
func (p *StubPublisher) PublishExportDispatched(_ context.Context, event domain.ExportDispatchedEvent) error {
	payload := map[string]any{
		"job_id":        event.JobID,
		"requester_id":  event.RequesterID,
		"kind":          event.Kind,
		"to_pdf":        event.ToPDF,
		"dispatched_at": event.DispatchedAt,
	}
	p.logEvent("exports.job.dispatched", event.RequesterID, event.DispatchedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
