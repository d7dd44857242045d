package port

import (
	"context"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// DocumentRepository persists artifact metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByInternalFilename(ctx context.Context, name string) (*domain.Document, error)
	// Rename updates internal_filename; callers pair it with the
	// file-system rename so both change atomically or not at all.
	Rename(ctx context.Context, id, internalFilename string) error
}
