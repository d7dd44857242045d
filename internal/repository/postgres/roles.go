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

var roleColumns = []string{
	"id",
	"name",
	"label",
	"description",
	"created_at",
	"updated_at",
	"deleted_at",
}

var roleSearchFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"label":      "label",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// RoleRepository implements port.RoleRepository using PostgreSQL.
type RoleRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository wires a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	repo := &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new role row.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Insert("roles").
		Columns("id", "name", "label", "description", "created_at", "updated_at").
		Values(role.ID, role.Name, role.Label, role.Description, role.CreatedAt, role.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// GetByID retrieves a live role by identifier.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns...).
		From("roles").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByNameAnyState retrieves a role by slug name, soft-deleted rows
// included. Name collision checks go through here so a deleted role still
// reserves its name.
func (r *RoleRepository) GetByNameAnyState(ctx context.Context, name string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns...).
		From("roles").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by name sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *RoleRepository) scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	if err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Label,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
		&role.DeletedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}
	return &role, nil
}

// Update modifies an existing live role.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Update("roles").
		Set("name", role.Name).
		Set("label", role.Label).
		Set("description", role.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": role.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update role: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on a live role.
func (r *RoleRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("roles").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete role: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser returns the live roles assigned to a user.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	stmt := `
		SELECT r.id, r.name, r.label, r.description, r.created_at, r.updated_at, r.deleted_at
		  FROM roles r
		  JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1 AND r.deleted_at IS NULL
		 ORDER BY r.name
	`

	rows, err := r.exec.Query(ctx, stmt, userID)
	if err != nil {
		return nil, fmt.Errorf("query roles by user: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Label,
			&role.Description,
			&role.CreatedAt,
			&role.UpdatedAt,
			&role.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// Search runs the DSL query over live roles.
func (r *RoleRepository) Search(ctx context.Context, search port.SearchQuery) (*port.SearchResult[domain.Role], error) {
	total, err := r.count(ctx, nil)
	if err != nil {
		return nil, err
	}

	filtered, err := r.count(ctx, search.Criteria)
	if err != nil {
		return nil, err
	}

	query := r.builder.Select(roleColumns...).
		From("roles").
		Where(squirrel.Eq{"deleted_at": nil})
	if query, err = applyCriteria(query, search.Criteria, roleSearchFields); err != nil {
		return nil, err
	}
	if query, err = applyOrder(query, search.Order, roleSearchFields); err != nil {
		return nil, err
	}
	if len(search.Order) == 0 {
		query = query.OrderBy("name ASC")
	}
	query = applyPagination(query, search)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Label,
			&role.Description,
			&role.CreatedAt,
			&role.UpdatedAt,
			&role.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return &port.SearchResult[domain.Role]{
		Data:            roles,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	}, nil
}

func (r *RoleRepository) count(ctx context.Context, criteria []port.SearchCriterion) (int, error) {
	query := r.builder.Select("COUNT(*)").
		From("roles").
		Where(squirrel.Eq{"deleted_at": nil})

	query, err := applyCriteria(query, criteria, roleSearchFields)
	if err != nil {
		return 0, err
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count roles sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan roles count: %w", err)
	}
	return int(count), nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
