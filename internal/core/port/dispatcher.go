package port

import (
	"context"
	"errors"

	"github.com/arklim/workforce-api/internal/core/domain"
)

// ErrJobNotFound is returned by Job when no record exists for the id.
var ErrJobNotFound = errors.New("dispatcher: job not found")

// ResetEmail is the payload of an email-send task carrying a reset link.
type ResetEmail struct {
	To   string `json:"to"`
	Link string `json:"link"`
}

// Dispatcher hands work to the background worker pool. Enqueued export jobs
// start in the pending state; the queue owns retry policy, not the caller.
type Dispatcher interface {
	EnqueueExport(ctx context.Context, job domain.ExportJob) error
	EnqueueResetEmail(ctx context.Context, mail ResetEmail) error
	Job(ctx context.Context, jobID string) (*domain.ExportJob, error)
}
