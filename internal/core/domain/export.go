package domain

import "time"

// ExportKind enumerates the artifact formats an export job can produce.
type ExportKind string

const (
	ExportKindXLSX ExportKind = "xlsx"
	ExportKindDOCX ExportKind = "docx"
)

// ExportStatus enumerates export job states.
// pending -> running -> (succeeded | failed); terminal states are final.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportJob is the message placed on the queue and the record tracked while
// the worker renders the artifact. InternalFilename is pre-allocated by the
// dispatcher so the artifact URL is known before the worker completes.
type ExportJob struct {
	ID               string
	Kind             ExportKind
	ToPDF            bool
	RequesterID      string
	InternalFilename string
	Status           ExportStatus
	ArtifactURL      string
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Extension returns the artifact file extension for the job, accounting for
// PDF conversion.
func (j ExportJob) Extension() string {
	if j.Kind == ExportKindDOCX && j.ToPDF {
		return ".pdf"
	}
	return "." + string(j.Kind)
}

// IsTerminal reports whether the job has reached a final state.
func (j ExportJob) IsTerminal() bool {
	return j.Status == ExportStatusSucceeded || j.Status == ExportStatusFailed
}
