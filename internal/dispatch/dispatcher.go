package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"herald/internal/directory"
	"herald/internal/job"
)

// Queue accepts delivery tasks. Implemented by in-process lanes and by the
// Kafka transport.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}

// Dispatcher routes one task per target office onto the chamber's queue.
// Instances are injected explicitly; there is no global dispatch table.
type Dispatcher struct {
	upper  Queue
	lower  Queue
	logger *slog.Logger
}

func NewDispatcher(upper, lower Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{upper: upper, lower: lower, logger: logger}
}

// Enqueue emits exactly one task per office in the job's target set. The
// task key (jobID, officeID) is stable, so queue redelivery downstream
// cannot duplicate results.
func (d *Dispatcher) Enqueue(ctx context.Context, j *job.DeliveryJob, offices []directory.Office) error {
	for _, office := range offices {
		task := Task{
			JobID:      j.ID,
			OwnerID:    j.OwnerID,
			OfficeID:   office.Code,
			Chamber:    office.Chamber,
			MessageRef: j.MessageRef,
		}

		var queue Queue
		switch office.Chamber {
		case directory.ChamberUpper:
			queue = d.upper
		case directory.ChamberLower:
			queue = d.lower
		default:
			return fmt.Errorf("office %s has unknown chamber %q", office.Code, office.Chamber)
		}

		if err := queue.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("enqueue task %s: %w", task.Key(), err)
		}
		d.logger.DebugContext(ctx, "delivery task enqueued",
			"task_key", task.Key(),
			"lane", string(office.Chamber),
		)
	}
	return nil
}
