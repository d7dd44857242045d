package domain

import "time"

// UserLoggedInEvent is published after a successful credential login.
type UserLoggedInEvent struct {
	EventID  string
	UserID   string
	Email    string
	LoggedAt time.Time
}

// PasswordChangedEvent is published when a reset confirmation commits a new
// password and fs_uniquifier.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
}

// PasswordResetRequestedEvent is published when a reset link is issued.
// The token itself never appears in the event payload.
type PasswordResetRequestedEvent struct {
	EventID     string
	UserID      string
	RequestedAt time.Time
}

// ExportDispatchedEvent is published when an export job is enqueued.
type ExportDispatchedEvent struct {
	EventID      string
	JobID        string
	RequesterID  string
	Kind         ExportKind
	ToPDF        bool
	DispatchedAt time.Time
}
