package port

import (
	"context"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// RoleRepository persists roles. Reads exclude soft-deleted rows except where
// noted: name-collision checks must see deleted rows too.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	// GetByNameAnyState looks a role up by slug name across live and
	// soft-deleted rows.
	GetByNameAnyState(ctx context.Context, name string) (*domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	SoftDelete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
	Search(ctx context.Context, query SearchQuery) (*SearchResult[domain.Role], error)
}
