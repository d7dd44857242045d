package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/storage"
	"github.com/arklim/workforce-api/internal/repository"
)

var (
	// ErrDocumentNotFound indicates the document does not exist or was deleted.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmptyUpload indicates the uploaded file carried no bytes.
	ErrEmptyUpload = errors.New("uploaded file is empty")
)

// documentsSubdir is the storage subdirectory for uploaded and exported files.
const documentsSubdir = "documents"

// DocumentService stores uploaded files and their metadata. Bytes land on
// disk under a uuid-based internal filename; the metadata row keeps the name
// the uploader used.
type DocumentService struct {
	docs  port.DocumentRepository
	store port.ArtifactStorage
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(docs port.DocumentRepository, store port.ArtifactStorage) *DocumentService {
	return &DocumentService{docs: docs, store: store}
}

// Upload streams the file to storage and records its metadata. The internal
// filename is freshly generated, so an existing file under the same name
// means a uuid collision and is treated as a hard error, never overwritten.
func (s *DocumentService) Upload(ctx context.Context, actorID, originalName, mimeType string, r io.Reader) (*domain.Document, error) {
	ext := filepath.Ext(s.store.Basename(originalName))
	internalName := uuid.NewString() + ext

	size, err := s.store.Save(documentsSubdir, internalName, r, false)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return nil, ErrEmptyUpload
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:               uuid.NewString(),
		InternalFilename: internalName,
		OriginalName:     s.store.Basename(originalName),
		MimeType:         mimeType,
		SizeBytes:        size,
		DirectoryPath:    documentsSubdir,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		// Roll the bytes back so a failed insert leaves no orphan file.
		_ = s.store.Remove(documentsSubdir, internalName)
		return nil, fmt.Errorf("record document: %w", err)
	}

	return &doc, nil
}

// Get retrieves document metadata.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Rename re-keys a document under a fresh internal filename, invalidating
// any previously handed-out download URL. The file moves first and the row
// follows; a failed row update moves the file back, so the pair changes
// together or not at all.
func (s *DocumentService) Rename(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newName := uuid.NewString() + filepath.Ext(doc.InternalFilename)

	if err := s.store.Rename(doc.DirectoryPath, doc.InternalFilename, newName); err != nil {
		return nil, fmt.Errorf("rename document bytes: %w", err)
	}

	if err := s.docs.Rename(ctx, id, newName); err != nil {
		_ = s.store.Rename(doc.DirectoryPath, newName, doc.InternalFilename)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("rename document row: %w", err)
	}

	doc.InternalFilename = newName
	doc.UpdatedAt = time.Now().UTC()
	return doc, nil
}

// OpenByFilename resolves an internal filename to its metadata and a reader
// over the stored bytes. Callers own closing the reader.
func (s *DocumentService) OpenByFilename(ctx context.Context, internalName string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.docs.GetByInternalFilename(ctx, internalName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("get document: %w", err)
	}

	f, err := s.store.Open(doc.DirectoryPath, doc.InternalFilename)
	if err != nil {
		return nil, nil, fmt.Errorf("open document bytes: %w", err)
	}
	return doc, f, nil
}
