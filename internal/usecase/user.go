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
	// ErrUserNotFound indicates the user does not exist, was deleted, or is
	// outside the actor's visibility scope.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// ScopeFor derives the row visibility scope for an actor. Admins see every
// live row; everyone else sees only their own cohort.
func ScopeFor(actor domain.User) port.UserScope {
	if actor.HasRole(domain.RoleAdmin) {
		return port.UnrestrictedScope()
	}
	return port.CohortScope(actor.ID)
}

// UserService manages principal accounts.
type UserService struct {
	users     port.UserRepository
	validator *security.PasswordValidator
}

// NewUserService constructs a UserService instance.
func NewUserService(users port.UserRepository, validator *security.PasswordValidator) *UserService {
	return &UserService{users: users, validator: validator}
}

// Create registers a new user on behalf of the actor. The actor becomes the
// row's creator, which anchors cohort scoping for team-leaders.
func (s *UserService) Create(ctx context.Context, actor domain.User, email, password string, roles []string) (*domain.User, error) {
	if err := s.validator.Validate(password, []string{email}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	uniquifier, err := security.GenerateSecureToken(16)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	creator := actor.ID
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FSUniquifier: uniquifier,
		Active:       true,
		Roles:        roles,
		CreatedBy:    &creator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	clean := user.Sanitized()
	return &clean, nil
}

// Get retrieves a user visible to the actor. A row outside the actor's
// scope reports not-found, never forbidden.
func (s *UserService) Get(ctx context.Context, actor domain.User, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, ScopeFor(actor), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	clean := user.Sanitized()
	return &clean, nil
}

// Delete soft-deletes a user visible to the actor.
func (s *UserService) Delete(ctx context.Context, actor domain.User, id string) error {
	if err := s.users.SoftDelete(ctx, ScopeFor(actor), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Search runs the DSL query within the actor's scope.
func (s *UserService) Search(ctx context.Context, actor domain.User, query port.SearchQuery) (*port.SearchResult[domain.User], error) {
	result, err := s.users.Search(ctx, ScopeFor(actor), query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	for i := range result.Data {
		result.Data[i] = result.Data[i].Sanitized()
	}
	return result, nil
}
