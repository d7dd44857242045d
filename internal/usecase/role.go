package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/repository"
)

var (
	// ErrRoleNotFound indicates the role does not exist or was deleted.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameTaken indicates the derived name collides with an existing
	// role, soft-deleted rows included.
	ErrRoleNameTaken = errors.New("Role name already created")
	// ErrRoleLabelRequired indicates the label was empty after trimming.
	ErrRoleLabelRequired = errors.New("role label is required")
)

// RoleService manages role definitions. The slug name is always derived from
// the label, never supplied by the caller.
type RoleService struct {
	roles port.RoleRepository
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(roles port.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

// Create derives the slug name from the label and inserts the role. A name
// collision with any existing row, live or deleted, is rejected: deleted
// roles keep their name reserved.
func (s *RoleService) Create(ctx context.Context, label string, description *string) (*domain.Role, error) {
	name := domain.RoleNameFromLabel(label)
	if name == "" {
		return nil, ErrRoleLabelRequired
	}

	if err := s.checkNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:          uuid.NewString(),
		Name:        name,
		Label:       label,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRoleNameTaken
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return &role, nil
}

func (s *RoleService) checkNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.roles.GetByNameAnyState(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("check role name: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrRoleNameTaken
}

// Get retrieves a live role.
func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// Update changes the label and description. The slug name follows the label,
// so renaming re-runs the collision check.
func (s *RoleService) Update(ctx context.Context, id, label string, description *string) (*domain.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := domain.RoleNameFromLabel(label)
	if name == "" {
		return nil, ErrRoleLabelRequired
	}

	if name != role.Name {
		if err := s.checkNameFree(ctx, name, role.ID); err != nil {
			return nil, err
		}
	}

	role.Name = name
	role.Label = label
	role.Description = description

	if err := s.roles.Update(ctx, *role); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrRoleNameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	role.UpdatedAt = time.Now().UTC()
	return role, nil
}

// Delete soft-deletes a role. Its name stays reserved.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	if err := s.roles.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// Search runs the DSL query over live roles.
func (s *RoleService) Search(ctx context.Context, query port.SearchQuery) (*port.SearchResult[domain.Role], error) {
	result, err := s.roles.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search roles: %w", err)
	}
	return result, nil
}
