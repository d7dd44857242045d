package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/render"
)

// artifactsSubdir is where rendered artifacts land. It matches the layout
// the API's document store uses so finished exports are served from the
// same files endpoint as uploads.
const artifactsSubdir = "documents"

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
)

// Worker consumes background tasks: roster exports and outbound reset
// emails. Retry policy and job-status transitions belong to the queue; the
// worker only does the work and reports the error.
type Worker struct {
	users     port.UserRepository
	documents port.DocumentRepository
	store     port.ArtifactStorage
	converter port.DocumentConverter
	mailer    port.Mailer
	logger    *zap.Logger
}

// New constructs a Worker instance.
func New(
	users port.UserRepository,
	documents port.DocumentRepository,
	store port.ArtifactStorage,
	converter port.DocumentConverter,
	mailer port.Mailer,
	log *zap.Logger,
) *Worker {
	return &Worker{
		users:     users,
		documents: documents,
		store:     store,
		converter: converter,
		mailer:    mailer,
		logger:    log,
	}
}

// HandleExport renders the active-user roster into the job's format, runs
// the optional PDF conversion, and files the artifact under the name the
// dispatcher pre-allocated. A metadata row is recorded so the artifact URL
// handed out at dispatch time resolves through the files endpoint.
func (w *Worker) HandleExport(ctx context.Context, job domain.ExportJob) error {
	if err := w.runExport(ctx, job); err != nil {
		w.logger.Error("export task failed",
			zap.String("task_id", job.ID),
			zap.String("kind", string(job.Kind)),
			zap.Bool("to_pdf", job.ToPDF),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("export task finished",
		zap.String("task_id", job.ID),
		zap.String("filename", job.InternalFilename),
	)
	return nil
}

func (w *Worker) runExport(ctx context.Context, job domain.ExportJob) error {
	users, err := w.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var (
		data []byte
		mime string
	)
	switch job.Kind {
	case domain.ExportKindXLSX:
		data, err = render.UsersXLSX(users)
		mime = mimeXLSX
	case domain.ExportKindDOCX:
		data, err = render.UsersDOCX(users)
		mime = mimeDOCX
	default:
		return fmt.Errorf("unknown export kind %q", job.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", job.Kind, err)
	}

	if job.Kind == domain.ExportKindDOCX && job.ToPDF {
		data, err = w.convertToPDF(ctx, data)
		if err != nil {
			return fmt.Errorf("convert to pdf: %w", err)
		}
		mime = mimePDF
	}

	// The filename was minted for this job; a file already sitting there is
	// a collision and must surface as an error, never be replaced.
	size, err := w.store.Save(artifactsSubdir, job.InternalFilename, bytes.NewReader(data), false)
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:               uuid.NewString(),
		InternalFilename: job.InternalFilename,
		OriginalName:     "users_export" + job.Extension(),
		MimeType:         mime,
		SizeBytes:        size,
		DirectoryPath:    artifactsSubdir,
		CreatedBy:        job.RequesterID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := w.documents.Create(ctx, doc); err != nil {
		_ = w.store.Remove(artifactsSubdir, job.InternalFilename)
		return fmt.Errorf("record artifact: %w", err)
	}

	return nil
}

func (w *Worker) convertToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	if w.converter == nil {
		return nil, fmt.Errorf("no document converter configured")
	}

	tmpDir, err := os.MkdirTemp("", "export-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "roster.docx")
	if err := os.WriteFile(inputPath, docx, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	pdfPath, err := w.converter.ConvertToPDF(ctx, inputPath, tmpDir)
	if err != nil {
		return nil, err
	}

	out, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return out, nil
}

// HandleResetEmail delivers a password-reset link.
func (w *Worker) HandleResetEmail(ctx context.Context, mail port.ResetEmail) error {
	if err := w.mailer.SendPasswordReset(ctx, mail.To, mail.Link); err != nil {
		w.logger.Error("reset email delivery failed",
			zap.String("to", mail.To),
			zap.Error(err),
		)
		return err
	}
	return nil
}
