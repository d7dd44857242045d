package port

import (
	"context"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// EventPublisher emits audit events to the message bus.
type EventPublisher interface {
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishExportDispatched(ctx context.Context, event domain.ExportDispatchedEvent) error
}
