package usecase

import (
	"context"
	"time"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/repository"
)

type stubUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User

	created         []domain.User
	passwordUpdates map[string][2]string
	deleted         []string
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail:         map[string]*domain.User{},
		byID:            map[string]*domain.User{},
		passwordUpdates: map[string][2]string{},
	}
	for _, user := range users {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) visible(scope port.UserScope, user *domain.User) bool {
	if !scope.CohortOnly {
		return true
	}
	if user.ID == scope.ActorID {
		return true
	}
	return user.CreatedBy != nil && *user.CreatedBy == scope.ActorID
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	r.created = append(r.created, user)
	copied := user
	r.byEmail[user.Email] = &copied
	r.byID[user.ID] = &copied
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, scope port.UserScope, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok || user.IsDeleted() || !r.visible(scope, user) {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok || user.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash, uniquifier string) error {
	user, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	user.FSUniquifier = uniquifier
	r.passwordUpdates[id] = [2]string{hash, uniquifier}
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, scope port.UserScope, id string) error {
	user, ok := r.byID[id]
	if !ok || user.IsDeleted() || !r.visible(scope, user) {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	user.DeletedAt = &now
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubUserRepo) Search(_ context.Context, scope port.UserScope, _ port.SearchQuery) (*port.SearchResult[domain.User], error) {
	result := &port.SearchResult[domain.User]{}
	for _, user := range r.byID {
		if user.IsDeleted() {
			continue
		}
		if r.visible(scope, user) {
			result.Data = append(result.Data, *user)
		}
	}
	result.RecordsTotal = len(result.Data)
	result.RecordsFiltered = len(result.Data)
	return result, nil
}

func (r *stubUserRepo) ListActive(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for _, user := range r.byID {
		if !user.IsDeleted() && user.Active {
			users = append(users, *user)
		}
	}
	return users, nil
}

type stubRoleRepo struct {
	byID   map[string]*domain.Role
	byName map[string]*domain.Role
}

func newStubRoleRepo(roles ...*domain.Role) *stubRoleRepo {
	repo := &stubRoleRepo{byID: map[string]*domain.Role{}, byName: map[string]*domain.Role{}}
	for _, role := range roles {
		repo.byID[role.ID] = role
		repo.byName[role.Name] = role
	}
	return repo
}

func (r *stubRoleRepo) Create(_ context.Context, role domain.Role) error {
	if _, ok := r.byName[role.Name]; ok {
		return repository.ErrConflict
	}
	copied := role
	r.byID[role.ID] = &copied
	r.byName[role.Name] = &copied
	return nil
}

func (r *stubRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok || role.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *stubRoleRepo) GetByNameAnyState(_ context.Context, name string) (*domain.Role, error) {
	role, ok := r.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *stubRoleRepo) Update(_ context.Context, role domain.Role) error {
	existing, ok := r.byID[role.ID]
	if !ok || existing.IsDeleted() {
		return repository.ErrNotFound
	}
	delete(r.byName, existing.Name)
	*existing = role
	r.byName[role.Name] = existing
	return nil
}

func (r *stubRoleRepo) SoftDelete(_ context.Context, id string) error {
	role, ok := r.byID[id]
	if !ok || role.IsDeleted() {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	role.DeletedAt = &now
	return nil
}

func (r *stubRoleRepo) ListByUser(_ context.Context, _ string) ([]domain.Role, error) {
	return nil, nil
}

func (r *stubRoleRepo) Search(_ context.Context, _ port.SearchQuery) (*port.SearchResult[domain.Role], error) {
	result := &port.SearchResult[domain.Role]{}
	for _, role := range r.byID {
		if !role.IsDeleted() {
			result.Data = append(result.Data, *role)
		}
	}
	result.RecordsTotal = len(result.Data)
	result.RecordsFiltered = len(result.Data)
	return result, nil
}

type stubDenylist struct {
	revoked map[string]time.Duration
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: map[string]time.Duration{}}
}

func (d *stubDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.revoked[jti] = ttl
	return nil
}

func (d *stubDenylist) Contains(_ context.Context, jti string) (bool, error) {
	_, ok := d.revoked[jti]
	return ok, nil
}

type stubPublisher struct {
	logins    []domain.UserLoggedInEvent
	changes   []domain.PasswordChangedEvent
	requests  []domain.PasswordResetRequestedEvent
	dispatches []domain.ExportDispatchedEvent
}

func (p *stubPublisher) PublishUserLoggedIn(_ context.Context, e domain.UserLoggedInEvent) error {
	p.logins = append(p.logins, e)
	return nil
}

func (p *stubPublisher) PublishPasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	p.changes = append(p.changes, e)
	return nil
}

func (p *stubPublisher) PublishPasswordResetRequested(_ context.Context, e domain.PasswordResetRequestedEvent) error {
	p.requests = append(p.requests, e)
	return nil
}

func (p *stubPublisher) PublishExportDispatched(_ context.Context, e domain.ExportDispatchedEvent) error {
	p.dispatches = append(p.dispatches, e)
	return nil
}

type stubDispatcher struct {
	exports []domain.ExportJob
	mails   []port.ResetEmail
}

func (d *stubDispatcher) EnqueueExport(_ context.Context, job domain.ExportJob) error {
	d.exports = append(d.exports, job)
	return nil
}

func (d *stubDispatcher) EnqueueResetEmail(_ context.Context, mail port.ResetEmail) error {
	d.mails = append(d.mails, mail)
	return nil
}

func (d *stubDispatcher) Job(_ context.Context, jobID string) (*domain.ExportJob, error) {
	for i := range d.exports {
		if d.exports[i].ID == jobID {
			copied := d.exports[i]
			return &copied, nil
		}
	}
	return nil, port.ErrJobNotFound
}
