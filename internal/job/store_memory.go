package job

import (
	"context"
	"sync"

	id "herald/pkg/domain"
	"herald/pkg/platform/sentinel"
	"herald/pkg/requestcontext"
)

// InMemory is the in-memory job store used in development and tests.
type InMemory struct {
	mu   sync.RWMutex
	jobs map[id.JobID]*DeliveryJob
}

func NewInMemory() *InMemory {
	return &InMemory{jobs: make(map[id.JobID]*DeliveryJob)}
}

func (s *InMemory) Create(ctx context.Context, j *DeliveryJob) error {
	if len(j.OfficeIDs) == 0 {
		return sentinel.ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[j.ID]; exists {
		return sentinel.ErrConflict
	}
	s.jobs[j.ID] = j.Clone()
	return nil
}

func (s *InMemory) RecordResult(ctx context.Context, jobID id.JobID, result SubmissionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !j.Targets(result.OfficeID) {
		return sentinel.ErrInvalidState
	}

	// Last write wins per office; a redelivered task overwrites, never
	// duplicates.
	j.Results[result.OfficeID] = result

	if j.CompletedAt == nil && j.TerminalCount() == len(j.OfficeIDs) {
		now := requestcontext.Now(ctx)
		j.CompletedAt = &now
	}
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, jobID id.JobID) (*DeliveryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return j.Clone(), nil
}
