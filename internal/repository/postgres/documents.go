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

var documentColumns = []string{
	"id",
	"internal_filename",
	"original_name",
	"mime_type",
	"size_bytes",
	"directory_path",
	"created_by",
	"created_at",
	"updated_at",
	"deleted_at",
}

// DocumentRepository implements port.DocumentRepository using PostgreSQL.
type DocumentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDocumentRepository wires a PostgreSQL-backed document repository.
func NewDocumentRepository(exec pgExecutor) *DocumentRepository {
	repo := &DocumentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *DocumentRepository) WithTx(tx pgx.Tx) *DocumentRepository {
	if tx == nil {
		return r
	}
	return &DocumentRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts document metadata. internal_filename carries a unique index,
// so a duplicate reports ErrConflict.
func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	stmt, args, err := r.builder.Insert("documents").
		Columns("id", "internal_filename", "original_name", "mime_type", "size_bytes", "directory_path", "created_by", "created_at", "updated_at").
		Values(doc.ID, doc.InternalFilename, doc.OriginalName, doc.MimeType, doc.SizeBytes, doc.DirectoryPath, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert document sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID retrieves a live document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	stmt, args, err := r.builder.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select document sql: %w", err)
	}

	return r.scanDocument(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByInternalFilename retrieves a live document by its on-disk name.
func (r *DocumentRepository) GetByInternalFilename(ctx context.Context, name string) (*domain.Document, error) {
	stmt, args, err := r.builder.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"internal_filename": name, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select document by filename sql: %w", err)
	}

	return r.scanDocument(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *DocumentRepository) scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(
		&doc.ID,
		&doc.InternalFilename,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.DirectoryPath,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.DeletedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

// Rename updates the on-disk name recorded for a document.
func (r *DocumentRepository) Rename(ctx context.Context, id, internalFilename string) error {
	stmt, args, err := r.builder.Update("documents").
		Set("internal_filename", internalFilename).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rename document sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("rename document: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)
