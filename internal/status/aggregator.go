// Package status derives job-level status views for polling clients. It is
// a thin read composition over the job service and holds no state of its
// own, so it is safe to call at arbitrarily high frequency.
package status

import (
	"context"

	"herald/internal/job"
	id "herald/pkg/domain"
)

// JobReader is the read surface the aggregator composes over.
type JobReader interface {
	Get(ctx context.Context, jobID id.JobID, ownerID id.OwnerID) (*job.DeliveryJob, error)
}

// View is one consistent snapshot of a job. Status and Progress are derived
// from the same result set, so a snapshot can never show a terminal status
// with incomplete progress.
type View struct {
	JobID    id.JobID
	Status   job.Status
	Progress int
	Results  []job.SubmissionResult
}

type Aggregator struct {
	jobs JobReader
}

func NewAggregator(jobs JobReader) *Aggregator {
	return &Aggregator{jobs: jobs}
}

// StatusOf returns the owner's view of a job. Results are ordered by the
// job's fixed target-office order; offices without a result yet appear as
// pending.
func (a *Aggregator) StatusOf(ctx context.Context, jobID id.JobID, ownerID id.OwnerID) (*View, error) {
	j, err := a.jobs.Get(ctx, jobID, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]job.SubmissionResult, 0, len(j.OfficeIDs))
	for _, officeID := range j.OfficeIDs {
		if r, ok := j.Results[officeID]; ok {
			results = append(results, r)
			continue
		}
		results = append(results, job.SubmissionResult{
			OfficeID: officeID,
			Outcome:  job.OutcomePending,
		})
	}

	return &View{
		JobID:    j.ID,
		Status:   j.Status(),
		Progress: j.Progress(),
		Results:  results,
	}, nil
}
