// Package service orchestrates delivery job creation: address resolution,
// office lookup, persistence, and queue fan-out. The triggering request is
// synchronous only through job creation; delivery happens on the worker
// lanes and never blocks the caller.
package service

import (
	"context"
	"errors"
	"log/slog"

	"herald/internal/address"
	"herald/internal/directory"
	"herald/internal/job"
	jobmetrics "herald/internal/job/metrics"
	"herald/internal/message"
	id "herald/pkg/domain"
	dErrors "herald/pkg/domain-errors"
	"herald/pkg/platform/sentinel"
	"herald/pkg/requestcontext"
)

// Resolver resolves a street address to a jurisdiction.
type Resolver interface {
	Resolve(ctx context.Context, addr address.Address) (address.Jurisdiction, error)
}

// OfficeDirectory answers which offices represent a jurisdiction.
type OfficeDirectory interface {
	OfficesFor(ctx context.Context, jur address.Jurisdiction) ([]directory.Office, error)
}

// Dispatcher fans a created job out into per-office delivery tasks.
type Dispatcher interface {
	Enqueue(ctx context.Context, j *job.DeliveryJob, offices []directory.Office) error
}

// JobService is the only write surface onto the job store. Other subsystems
// read through Get; nothing else is permitted to write.
type JobService struct {
	resolver   Resolver
	directory  OfficeDirectory
	messages   message.Store
	jobs       job.Store
	dispatcher Dispatcher
	metrics    *jobmetrics.Metrics
	logger     *slog.Logger
}

func NewJobService(
	resolver Resolver,
	dir OfficeDirectory,
	messages message.Store,
	jobs job.Store,
	dispatcher Dispatcher,
	metrics *jobmetrics.Metrics,
	logger *slog.Logger,
) *JobService {
	return &JobService{
		resolver:   resolver,
		directory:  dir,
		messages:   messages,
		jobs:       jobs,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateResult carries everything the caller learns synchronously: the job
// and the full office list, so the sender knows who will be contacted before
// delivery completes.
type CreateResult struct {
	Job     *job.DeliveryJob
	Offices []directory.Office
}

// Create resolves the address, fixes the target office set, persists the job
// and enqueues the fan-out. Resolution-time errors prevent job creation
// entirely; after creation, per-office failures can only degrade the job,
// never erase it.
func (s *JobService) Create(ctx context.Context, ownerID id.OwnerID, messageRef string, addr address.Address) (*CreateResult, error) {
	if ownerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if messageRef == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message_ref is required")
	}

	if _, err := s.messages.Find(ctx, messageRef); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "message_ref does not resolve to a message")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up message")
	}

	jur, err := s.resolver.Resolve(ctx, addr)
	if err != nil {
		return nil, err
	}

	offices, err := s.directory.OfficesFor(ctx, jur)
	if err != nil {
		return nil, err
	}

	officeIDs := make([]string, len(offices))
	for i, o := range offices {
		officeIDs[i] = o.Code
	}

	j := &job.DeliveryJob{
		ID:         id.NewJobID(),
		OwnerID:    ownerID,
		MessageRef: messageRef,
		OfficeIDs:  officeIDs,
		Results:    make(map[string]job.SubmissionResult),
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create delivery job")
	}

	if err := s.dispatcher.Enqueue(ctx, j, offices); err != nil {
		// The job exists; enqueue failure leaves it queued rather than
		// failing the request. An operational redrive can re-enqueue.
		s.logger.ErrorContext(ctx, "failed to enqueue delivery tasks",
			"job_id", j.ID,
			"error", err,
		)
	}

	if s.metrics != nil {
		s.metrics.IncrementJobsCreated()
		s.metrics.AddOfficesTargeted(len(offices))
	}
	s.logger.InfoContext(ctx, "delivery job created",
		"job_id", j.ID,
		"owner_id", ownerID,
		"office_count", len(offices),
	)

	return &CreateResult{Job: j, Offices: offices}, nil
}

// Get returns a job to its owner. Ownership is enforced here, the last
// point with full context: any other caller gets Forbidden.
func (s *JobService) Get(ctx context.Context, jobID id.JobID, ownerID id.OwnerID) (*job.DeliveryJob, error) {
	if ownerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "delivery job not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load delivery job")
	}
	if j.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "delivery job belongs to a different owner")
	}
	return j, nil
}
