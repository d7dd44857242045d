package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/repository"
)

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"fs_uniquifier",
	"active",
	"created_by",
	"created_at",
	"updated_at",
	"deleted_at",
}

// userSearchFields maps exposed search fields to columns.
var userSearchFields = map[string]string{
	"id":         "id",
	"email":      "email",
	"active":     "active",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// scopeWhere narrows a query to the rows the scope may see. Soft-deleted rows
// are always excluded; cohort scopes additionally match only rows the actor
// created, plus the actor's own row.
func scopeWhere(query squirrel.SelectBuilder, scope port.UserScope) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"deleted_at": nil})
	if scope.CohortOnly {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"created_by": scope.ActorID},
			squirrel.Eq{"id": scope.ActorID},
		})
	}
	return query
}

// Create inserts a new user row with its role assignments.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Insert("users").
		Columns("id", "email", "password_hash", "fs_uniquifier", "active", "created_by", "created_at", "updated_at").
		Values(user.ID, user.Email, user.PasswordHash, user.FSUniquifier, user.Active, user.CreatedBy, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return r.replaceRoles(ctx, user.ID, user.Roles)
}

func (r *UserRepository) replaceRoles(ctx context.Context, userID string, roleNames []string) error {
	delStmt, delArgs, err := r.builder.Delete("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user roles sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, delStmt, delArgs...); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}

	if len(roleNames) == 0 {
		return nil
	}

	stmt := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = ANY($2) AND deleted_at IS NULL
	`
	if _, err := r.exec.Exec(ctx, stmt, userID, roleNames); err != nil {
		return fmt.Errorf("assign user roles: %w", err)
	}
	return nil
}

// GetByID retrieves a live user visible to the scope.
func (r *UserRepository) GetByID(ctx context.Context, scope port.UserScope, id string) (*domain.User, error) {
	query := scopeWhere(r.builder.Select(userColumns...).From("users"), scope).
		Where(squirrel.Eq{"id": id})

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	if err := r.fillRoles(ctx, []*domain.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a live user by email, ignoring scope. Used for
// authentication flows before a principal exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	user, err := r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	if err := r.fillRoles(ctx, []*domain.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FSUniquifier,
		&user.Active,
		&user.CreatedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// fillRoles loads role names for the given users in one query.
func (r *UserRepository) fillRoles(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]string, 0, len(users))
	byID := make(map[string]*domain.User, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
		byID[user.ID] = user
	}

	stmt := `
		SELECT ur.user_id, r.name
		  FROM user_roles ur
		  JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ANY($1) AND r.deleted_at IS NULL
		 ORDER BY r.name
	`
	rows, err := r.exec.Query(ctx, stmt, ids)
	if err != nil {
		return fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, roleName string
		if err := rows.Scan(&userID, &roleName); err != nil {
			return fmt.Errorf("scan user role: %w", err)
		}
		if user, ok := byID[userID]; ok {
			user.Roles = append(user.Roles, roleName)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate user roles: %w", err)
	}
	return nil
}

// UpdatePassword commits the new hash and a rotated fs_uniquifier together so
// outstanding tokens die with the old credential.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash, fsUniquifier string) error {
	stmt, args, err := r.builder.Update("users").
		Set("password_hash", passwordHash).
		Set("fs_uniquifier", fsUniquifier).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on a row visible to the scope. A row outside
// the scope reports not-found, never forbidden.
func (r *UserRepository) SoftDelete(ctx context.Context, scope port.UserScope, id string) error {
	update := r.builder.Update("users").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil})

	if scope.CohortOnly {
		update = update.Where(squirrel.Or{
			squirrel.Eq{"created_by": scope.ActorID},
			squirrel.Eq{"id": scope.ActorID},
		})
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Search runs the DSL query within the scope and reports page data plus
// total and filtered counts.
func (r *UserRepository) Search(ctx context.Context, scope port.UserScope, search port.SearchQuery) (*port.SearchResult[domain.User], error) {
	total, err := r.count(ctx, scope, nil)
	if err != nil {
		return nil, err
	}

	filtered, err := r.count(ctx, scope, search.Criteria)
	if err != nil {
		return nil, err
	}

	query := scopeWhere(r.builder.Select(userColumns...).From("users"), scope)
	if query, err = applyCriteria(query, search.Criteria, userSearchFields); err != nil {
		return nil, err
	}
	if query, err = applyOrder(query, search.Order, userSearchFields); err != nil {
		return nil, err
	}
	if len(search.Order) == 0 {
		query = query.OrderBy("created_at DESC")
	}
	query = applyPagination(query, search)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FSUniquifier,
			&user.Active,
			&user.CreatedBy,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	refs := make([]*domain.User, len(users))
	for i := range users {
		refs[i] = &users[i]
	}
	if err := r.fillRoles(ctx, refs); err != nil {
		return nil, err
	}

	return &port.SearchResult[domain.User]{
		Data:            users,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (r *UserRepository) count(ctx context.Context, scope port.UserScope, criteria []port.SearchCriterion) (int, error) {
	query := scopeWhere(r.builder.Select("COUNT(*)").From("users"), scope)

	query, err := applyCriteria(query, criteria, userSearchFields)
	if err != nil {
		return 0, err
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan users count: %w", err)
	}
	return int(count), nil
}

// ListActive returns every live active user, for roster exports.
func (r *UserRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"deleted_at": nil, "active": true}).
		OrderBy("email ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FSUniquifier,
			&user.Active,
			&user.CreatedBy,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active users: %w", err)
	}

	refs := make([]*domain.User, len(users))
	for i := range users {
		refs[i] = &users[i]
	}
	if err := r.fillRoles(ctx, refs); err != nil {
		return nil, err
	}

	return users, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
