package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/config"
	"github.com/arklim/workforce-api/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserLoggedIn publishes auth.user.logged_in events.
func (p *EventPublisher) PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error {
	payload := struct {
		UserID   string    `json:"user_id"`
		Email    string    `json:"email"`
		LoggedAt time.Time `json:"logged_at"`
	}{
		UserID:   event.UserID,
		Email:    logger.MaskEmail(event.Email),
		LoggedAt: event.LoggedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.user.logged_in", event.UserID, event.LoggedAt, payload)
}

// PublishPasswordChanged publishes auth.user.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.user.password.changed", event.UserID, event.ChangedAt, payload)
}

// PublishPasswordResetRequested publishes auth.user.password.reset_requested
// events. The reset token itself never enters the payload.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID      string    `json:"user_id"`
		RequestedAt time.Time `json:"requested_at"`
	}{
		UserID:      event.UserID,
		RequestedAt: event.RequestedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.user.password.reset_requested", event.UserID, event.RequestedAt, payload)
}

// PublishExportDispatched publishes exports.job.dispatched events.
func (p *EventPublisher) PublishExportDispatched(ctx context.Context, event domain.ExportDispatchedEvent) error {
	payload := struct {
		JobID        string    `json:"job_id"`
		RequesterID  string    `json:"requester_id"`
		Kind         string    `json:"kind"`
		ToPDF        bool      `json:"to_pdf"`
		DispatchedAt time.Time `json:"dispatched_at"`
	}{
		JobID:        event.JobID,
		RequesterID:  event.RequesterID,
		Kind:         string(event.Kind),
		ToPDF:        event.ToPDF,
		DispatchedAt: event.DispatchedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "exports.job.dispatched", event.RequesterID, event.DispatchedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
