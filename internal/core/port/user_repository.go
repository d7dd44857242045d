package port

import (
	"context"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// UserScope narrows repository reads to the rows a principal may see.
// Admin callers use an unrestricted scope; team-leaders only see users in
// their own cohort (rows they created, plus themselves), so a forbidden
// target surfaces as not-found rather than forbidden.
type UserScope struct {
	ActorID    string
	CohortOnly bool
}

// UnrestrictedScope returns a scope that matches every live row.
func UnrestrictedScope() UserScope {
	return UserScope{}
}

// CohortScope returns a scope limited to the actor's cohort.
func CohortScope(actorID string) UserScope {
	return UserScope{ActorID: actorID, CohortOnly: true}
}

// UserRepository persists principals and their role assignments.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, scope UserScope, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdatePassword commits a new password hash together with a rotated
	// fs_uniquifier in one statement.
	UpdatePassword(ctx context.Context, id, passwordHash, fsUniquifier string) error
	SoftDelete(ctx context.Context, scope UserScope, id string) error
	Search(ctx context.Context, scope UserScope, query SearchQuery) (*SearchResult[domain.User], error)
	ListActive(ctx context.Context) ([]domain.User, error)
}
