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
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is deactivated.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrInvalidToken indicates the presented token is malformed, of the wrong
	// type, signed with a stale credential, or otherwise unusable.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the presented token has expired.
	ErrExpiredToken = errors.New("token expired")
	// ErrTokenRevoked indicates the presented token was revoked via logout.
	ErrTokenRevoked = errors.New("token revoked")
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService coordinates login, token refresh, validation, and logout.
type AuthService struct {
	users    port.UserRepository
	denylist port.TokenDenylist
	tokens   *security.TokenManager
	events   port.EventPublisher
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, denylist port.TokenDenylist, tokens *security.TokenManager, events port.EventPublisher) *AuthService {
	return &AuthService{users: users, denylist: denylist, tokens: tokens, events: events}
}

// Login validates credentials and issues an access and refresh token pair.
// Unknown emails and wrong passwords are indistinguishable to the caller;
// a correct password on a deactivated account reports ErrInactiveAccount.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, domain.User, error) {
	if email == "" || password == "" {
		return TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, domain.User{}, ErrInvalidCredentials
		}
		return TokenPair{}, domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return TokenPair{}, domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	if !user.Active {
		return TokenPair{}, domain.User{}, ErrInactiveAccount
	}

	access, _, err := s.tokens.IssueAccess(user.ID, user.FSUniquifier, user.Roles)
	if err != nil {
		return TokenPair{}, domain.User{}, err
	}
	refresh, _, err := s.tokens.IssueRefresh(user.ID, user.FSUniquifier)
	if err != nil {
		return TokenPair{}, domain.User{}, err
	}

	// Audit delivery is best effort.
	_ = s.events.PublishUserLoggedIn(ctx, domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Email:    user.Email,
		LoggedAt: time.Now().UTC(),
	})

	return TokenPair{AccessToken: access, RefreshToken: refresh}, user.Sanitized(), nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	_, user, err := s.validate(ctx, refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	access, _, err := s.tokens.IssueAccess(user.ID, user.FSUniquifier, user.Roles)
	if err != nil {
		return "", err
	}
	return access, nil
}

// ParseAccessToken validates an access token end to end and returns the
// authenticated principal.
func (s *AuthService) ParseAccessToken(ctx context.Context, accessToken string) (*domain.User, error) {
	_, user, err := s.validate(ctx, accessToken, security.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// validate runs the shared token checks: signature and expiry, expected
// type, denylist, live user, and fs_uniquifier freshness.
func (s *AuthService) validate(ctx context.Context, token, expectedType string) (*security.Claims, *domain.User, error) {
	claims, err := s.tokens.Parse(token, expectedType)
	if err != nil {
		if errors.Is(err, security.ErrJWTExpired) {
			return nil, nil, ErrExpiredToken
		}
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.users.GetByID(ctx, port.UnrestrictedScope(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("lookup token subject: %w", err)
	}

	if !user.Active {
		return nil, nil, ErrInactiveAccount
	}

	// Tokens minted before a password change carry a stale uniquifier.
	if claims.FSUniquifier != user.FSUniquifier {
		return nil, nil, ErrInvalidToken
	}

	return claims, user, nil
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, _, err := s.validate(ctx, accessToken, security.TokenTypeAccess)
	if err != nil {
		return err
	}

	if err := s.denylist.Revoke(ctx, claims.ID, s.tokens.RemainingTTL(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
