package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
)

var (
	// ErrExportJobNotFound indicates no job exists for the id, or its record
	// already aged out.
	ErrExportJobNotFound = errors.New("export job not found")
	// ErrUnsupportedExportKind indicates the requested format is unknown.
	ErrUnsupportedExportKind = errors.New("unsupported export kind")
)

// ExportService dispatches roster export jobs to the worker pool. The
// artifact filename is allocated up front, so the job's download URL is
// known the moment it is accepted.
type ExportService struct {
	dispatcher port.Dispatcher
	events     port.EventPublisher
	baseURL    string
}

// NewExportService constructs an ExportService instance.
func NewExportService(dispatcher port.Dispatcher, events port.EventPublisher, baseURL string) *ExportService {
	return &ExportService{dispatcher: dispatcher, events: events, baseURL: baseURL}
}

// Dispatch enqueues an export job and returns it in the pending state with
// the predicted artifact URL filled in. PDF conversion only applies to docx
// exports; the flag is ignored for spreadsheets.
func (s *ExportService) Dispatch(ctx context.Context, requesterID string, kind domain.ExportKind, toPDF bool) (*domain.ExportJob, error) {
	switch kind {
	case domain.ExportKindXLSX, domain.ExportKindDOCX:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExportKind, kind)
	}

	if kind != domain.ExportKindDOCX {
		toPDF = false
	}

	now := time.Now().UTC()
	job := domain.ExportJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		ToPDF:       toPDF,
		RequesterID: requesterID,
		Status:      domain.ExportStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	job.InternalFilename = uuid.NewString() + job.Extension()
	job.ArtifactURL = fmt.Sprintf("%s/api/files/%s", s.baseURL, job.InternalFilename)

	if err := s.dispatcher.EnqueueExport(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue export: %w", err)
	}

	_ = s.events.PublishExportDispatched(ctx, domain.ExportDispatchedEvent{
		EventID:      uuid.NewString(),
		JobID:        job.ID,
		RequesterID:  requesterID,
		Kind:         kind,
		ToPDF:        toPDF,
		DispatchedAt: now,
	})

	return &job, nil
}

// Status reports the tracked state of a job.
func (s *ExportService) Status(ctx context.Context, jobID string) (*domain.ExportJob, error) {
	job, err := s.dispatcher.Job(ctx, jobID)
	if err != nil {
		if errors.Is(err, port.ErrJobNotFound) {
			return nil, ErrExportJobNotFound
		}
		return nil, fmt.Errorf("load export job: %w", err)
	}
	return job, nil
}
