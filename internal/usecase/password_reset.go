package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/security"
	"github.com/arklim/workforce-api/internal/repository"
)

var (
	// ErrResetTokenInvalid indicates the reset token is malformed or forged.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrResetTokenExpired indicates the reset token aged out.
	ErrResetTokenExpired = errors.New("reset token expired")
	// ErrWeakPassword wraps a password policy violation.
	ErrWeakPassword = errors.New("password rejected by policy")
)

// PasswordResetService drives the forgot-password flow: a signed one-time
// token is mailed out, validated, and finally exchanged for a new credential.
type PasswordResetService struct {
	users      port.UserRepository
	otp        *security.OTPManager
	tokens     *security.TokenManager
	dispatcher port.Dispatcher
	events     port.EventPublisher
	validator  *security.PasswordValidator
	baseURL    string
}

// NewPasswordResetService constructs a PasswordResetService instance.
func NewPasswordResetService(
	users port.UserRepository,
	otp *security.OTPManager,
	tokens *security.TokenManager,
	dispatcher port.Dispatcher,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	baseURL string,
) *PasswordResetService {
	return &PasswordResetService{
		users:      users,
		otp:        otp,
		tokens:     tokens,
		dispatcher: dispatcher,
		events:     events,
		validator:  validator,
		baseURL:    baseURL,
	}
}

// RequestReset issues a reset token and queues the email. It reports success
// whether or not the email maps to an account, so the endpoint cannot be
// used to enumerate users.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active {
		return nil
	}

	token, err := s.otp.Issue(user.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)
	if err := s.dispatcher.EnqueueResetEmail(ctx, port.ResetEmail{To: user.Email, Link: link}); err != nil {
		return fmt.Errorf("enqueue reset email: %w", err)
	}

	_ = s.events.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		RequestedAt: time.Now().UTC(),
	})

	return nil
}

// ValidateToken checks a reset token without consuming it and returns the
// email it was issued for.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (string, error) {
	email, err := s.verify(ctx, token)
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *PasswordResetService) verify(ctx context.Context, token string) (string, error) {
	email, err := s.otp.Verify(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return "", ErrResetTokenExpired
		}
		return "", ErrResetTokenInvalid
	}

	// The account may have gone away since the token was issued.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrResetTokenInvalid
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active {
		return "", ErrResetTokenInvalid
	}

	return email, nil
}

// ConfirmReset verifies the token, commits the new password with a rotated
// fs_uniquifier, and returns a fresh access token so the user is signed in.
// Rotating the uniquifier invalidates every token minted before the change.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) (string, error) {
	email, err := s.verify(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := s.validator.Validate(newPassword, []string{user.Email}); err != nil {
		return "", fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	uniquifier, err := security.GenerateSecureToken(16)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash, uniquifier); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}

	_ = s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		ChangedAt: time.Now().UTC(),
	})

	access, _, err := s.tokens.IssueAccess(user.ID, uniquifier, user.Roles)
	if err != nil {
		return "", err
	}
	return access, nil
}
