// Package delivery consumes delivery tasks: it builds the chamber-specific
// payload, calls the external submission endpoint with retry, and writes the
// classified outcome back onto the job.
package delivery

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"herald/internal/delivery/metrics"
	"herald/internal/directory"
	"herald/internal/dispatch"
	"herald/internal/job"
	"herald/internal/message"
	"herald/pkg/platform/circuit"
	"herald/pkg/requestcontext"
)

var tracer = otel.Tracer("herald/internal/delivery")

// OfficeLookup resolves an office code to its reference data.
type OfficeLookup interface {
	FindByCode(ctx context.Context, code string) (*directory.Office, error)
}

// Worker processes one task at a time. Instances are shared across lane
// goroutines; all state is read-only after construction.
type Worker struct {
	offices     OfficeLookup
	messages    message.Store
	submitters  map[directory.Chamber]Submitter
	breakers    map[directory.Chamber]*circuit.Breaker
	jobs        job.Store
	maxAttempts int
	baseDelay   time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewWorker(
	offices OfficeLookup,
	messages message.Store,
	upper Submitter,
	lower Submitter,
	jobs job.Store,
	maxAttempts int,
	baseDelay time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		offices:  offices,
		messages: messages,
		submitters: map[directory.Chamber]Submitter{
			directory.ChamberUpper: upper,
			directory.ChamberLower: lower,
		},
		breakers: map[directory.Chamber]*circuit.Breaker{
			directory.ChamberUpper: circuit.New("upper-submit"),
			directory.ChamberLower: circuit.New("lower-submit"),
		},
		jobs:        jobs,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		metrics:     m,
		logger:      logger,
	}
}

// Handle delivers one task and records the outcome. A delivery failure is
// recorded on the job, never propagated: one office's outage must degrade
// the job to partial, not fail it.
func (w *Worker) Handle(ctx context.Context, task dispatch.Task) {
	result := w.deliver(ctx, task)

	if err := w.jobs.RecordResult(ctx, task.JobID, result); err != nil {
		w.logger.ErrorContext(ctx, "failed to record delivery result",
			"task_key", task.Key(),
			"outcome", result.Outcome,
			"error", err,
		)
		return
	}

	if w.metrics != nil {
		w.metrics.ObserveSubmission(string(task.Chamber), string(result.Outcome))
	}
	w.logger.InfoContext(ctx, "delivery task finished",
		"task_key", task.Key(),
		"lane", string(task.Chamber),
		"outcome", result.Outcome,
		"attempts", result.AttemptCount,
	)
}

func (w *Worker) deliver(ctx context.Context, task dispatch.Task) job.SubmissionResult {
	result := job.SubmissionResult{
		OfficeID:    task.OfficeID,
		AttemptedAt: requestcontext.Now(ctx),
	}

	office, err := w.offices.FindByCode(ctx, task.OfficeID)
	if err != nil {
		result.Outcome = job.OutcomeFailed
		result.ErrorKind = job.ErrorKindPermanentUnreachable
		return result
	}

	msg, err := w.messages.Find(ctx, task.MessageRef)
	if err != nil {
		result.Outcome = job.OutcomeFailed
		result.ErrorKind = job.ErrorKindRejectedPayload
		return result
	}

	submitter, ok := w.submitters[office.Chamber]
	if !ok {
		result.Outcome = job.OutcomeFailed
		result.ErrorKind = job.ErrorKindPermanentUnreachable
		return result
	}

	breaker := w.breakers[office.Chamber]

	for attempt := 1; ; attempt++ {
		result.AttemptCount = attempt

		var receipt *Receipt
		var err error
		if breaker.IsOpen() {
			// Fail fast instead of burning the full endpoint timeout on a
			// dependency known to be down.
			err = &SubmitError{Kind: job.ErrorKindTransientNetwork, Message: "submission endpoint circuit open"}
		} else {
			receipt, err = w.submit(ctx, submitter, *office, *msg, attempt)
			w.recordBreakerOutcome(ctx, breaker, err)
		}

		if err == nil {
			result.Outcome = job.OutcomeSucceeded
			result.ConfirmationID = receipt.ConfirmationID
			return result
		}

		kind := Classify(err)
		result.ErrorKind = kind

		if !kind.Transient() || attempt >= w.maxAttempts {
			result.Outcome = job.OutcomeFailed
			return result
		}

		if w.metrics != nil {
			w.metrics.IncrementRetries()
		}
		w.logger.WarnContext(ctx, "transient delivery failure, retrying",
			"task_key", task.Key(),
			"attempt", attempt,
			"error_kind", string(kind),
		)

		// Exponential backoff: baseDelay, 2x, 4x, ...
		if !sleep(ctx, w.baseDelay<<(attempt-1)) {
			result.Outcome = job.OutcomeFailed
			return result
		}
	}
}

// recordBreakerOutcome feeds the breaker. Only transient failures count
// against it: a rejected payload or a retired office says nothing about
// endpoint health.
func (w *Worker) recordBreakerOutcome(ctx context.Context, breaker *circuit.Breaker, err error) {
	if err == nil {
		if _, change := breaker.RecordSuccess(); change.Closed {
			w.logger.InfoContext(ctx, "submission circuit closed", "breaker", breaker.Name())
		}
		return
	}
	if !Classify(err).Transient() {
		return
	}
	if _, change := breaker.RecordFailure(); change.Opened {
		w.logger.WarnContext(ctx, "submission circuit opened", "breaker", breaker.Name())
	}
}

func (w *Worker) submit(ctx context.Context, submitter Submitter, office directory.Office, msg message.Message, attempt int) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "delivery.submit")
	span.SetAttributes(
		attribute.String("office.code", office.Code),
		attribute.String("office.chamber", string(office.Chamber)),
		attribute.Int("attempt", attempt),
	)
	defer span.End()

	start := time.Now()
	receipt, err := submitter.Submit(ctx, office, msg)
	if w.metrics != nil {
		w.metrics.ObserveSubmitDuration(time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
	}
	return receipt, err
}

// sleep waits for d or until the context is canceled. Returns false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
