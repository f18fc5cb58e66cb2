package delivery

import (
	"context"
	"errors"
	"net"

	"herald/internal/job"
)

// SubmitError is a classified failure from an office's submission endpoint.
type SubmitError struct {
	Kind    job.ErrorKind
	Message string
}

func (e *SubmitError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Classify maps an arbitrary submission error to an error kind. Anything we
// cannot positively identify is treated as transient network trouble, since
// timeouts and connection resets are the common case.
func Classify(err error) job.ErrorKind {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return job.ErrorKindTransientNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return job.ErrorKindTransientNetwork
	}
	return job.ErrorKindTransientNetwork
}
