package job

import (
	"context"

	id "herald/pkg/domain"
)

// Store persists delivery jobs and their per-office results.
//
// RecordResult is the idempotency anchor for the whole pipeline: writes are
// last-write-wins per (job, office), so queue redelivery of a task can never
// produce two results for the same office. Implementations must reject an
// office outside the job's target set with sentinel.ErrInvalidState and
// stamp CompletedAt on the write that makes every office terminal.
type Store interface {
	Create(ctx context.Context, j *DeliveryJob) error
	RecordResult(ctx context.Context, jobID id.JobID, result SubmissionResult) error
	FindByID(ctx context.Context, jobID id.JobID) (*DeliveryJob, error)
}
