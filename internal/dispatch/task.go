// Package dispatch fans a delivery job out into per-office tasks and routes
// them onto per-chamber lanes. Lanes are fully independent: a degraded
// lower-chamber dependency never starves upper-chamber delivery.
package dispatch

import (
	"herald/internal/directory"
	id "herald/pkg/domain"
)

// Task is one unit of delivery work: one office of one job. Tasks are
// serializable so broker-backed queues can carry them.
type Task struct {
	JobID      id.JobID          `json:"job_id"`
	OwnerID    id.OwnerID        `json:"owner_id"`
	OfficeID   string            `json:"office_id"`
	Chamber    directory.Chamber `json:"chamber"`
	MessageRef string            `json:"message_ref"`
}

// Key is the stable deduplication key. Redelivery of a task with the same
// key is harmless because result writes are last-write-wins per office.
func (t Task) Key() string {
	return t.JobID.String() + "/" + t.OfficeID
}
