// Package job holds the delivery job model and its stores. A job is the
// durable record of one outbound request and its per-office outcomes.
package job

import (
	"time"

	id "herald/pkg/domain"
)

// Status is the job-level lifecycle state. It is never stored: it is derived
// from the result set on every read, so it can never drift from the results.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// Outcome is the per-office delivery state.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Terminal reports whether the outcome is final for its office.
func (o Outcome) Terminal() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// ErrorKind classifies a per-office delivery failure. Transient kinds are
// retried; the rest fail immediately.
type ErrorKind string

const (
	ErrorKindNone                 ErrorKind = ""
	ErrorKindTransientNetwork     ErrorKind = "transient-network"
	ErrorKindTransientRateLimited ErrorKind = "transient-rate-limited"
	ErrorKindRejectedPayload      ErrorKind = "rejected-payload"
	ErrorKindPermanentUnreachable ErrorKind = "permanent-unreachable"
)

// Transient reports whether a failure of this kind is worth retrying.
func (k ErrorKind) Transient() bool {
	return k == ErrorKindTransientNetwork || k == ErrorKindTransientRateLimited
}

// SubmissionResult is the outcome of delivering to one office.
// ConfirmationID stays nil when the office accepted without issuing one;
// accepted-but-unconfirmed is still success.
type SubmissionResult struct {
	OfficeID       string
	Outcome        Outcome
	ConfirmationID *string
	ErrorKind      ErrorKind
	AttemptedAt    time.Time
	AttemptCount   int
}

// DeliveryJob is one fan-out request. OfficeIDs is fixed at creation;
// Results only ever holds keys from OfficeIDs, at most one per office.
type DeliveryJob struct {
	ID          id.JobID
	OwnerID     id.OwnerID
	MessageRef  string
	OfficeIDs   []string
	Results     map[string]SubmissionResult
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Targets reports whether officeID is one of the job's delivery targets.
func (j *DeliveryJob) Targets(officeID string) bool {
	for _, oid := range j.OfficeIDs {
		if oid == officeID {
			return true
		}
	}
	return false
}

// TerminalCount returns how many offices have a final result.
func (j *DeliveryJob) TerminalCount() int {
	n := 0
	for _, r := range j.Results {
		if r.Outcome.Terminal() {
			n++
		}
	}
	return n
}

// Status derives the job state from the result set. Pure and recomputed per
// call; two reads of the same state always agree.
func (j *DeliveryJob) Status() Status {
	if len(j.Results) == 0 {
		return StatusQueued
	}

	terminal := 0
	succeeded := 0
	failed := 0
	for _, r := range j.Results {
		if !r.Outcome.Terminal() {
			continue
		}
		terminal++
		if r.Outcome == OutcomeSucceeded {
			succeeded++
		} else {
			failed++
		}
	}

	if terminal < len(j.OfficeIDs) {
		return StatusProcessing
	}
	switch {
	case failed == 0:
		return StatusCompleted
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Progress is the percentage of offices with a terminal result. It is
// monotonically non-decreasing over the life of a job because terminal
// results are never removed.
func (j *DeliveryJob) Progress() int {
	if len(j.OfficeIDs) == 0 {
		return 0
	}
	return j.TerminalCount() * 100 / len(j.OfficeIDs)
}

// Clone returns a deep copy so store reads never alias internal state.
func (j *DeliveryJob) Clone() *DeliveryJob {
	out := *j
	out.OfficeIDs = make([]string, len(j.OfficeIDs))
	copy(out.OfficeIDs, j.OfficeIDs)
	out.Results = make(map[string]SubmissionResult, len(j.Results))
	for k, v := range j.Results {
		out.Results[k] = v
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
