// Package domain holds shared domain primitives: typed identifiers used
// across services. Typed IDs keep an owner ID from being passed where a job
// ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "herald/pkg/domain-errors"
)

// OwnerID identifies the authenticated constituent that owns a delivery job.
type OwnerID uuid.UUID

// JobID identifies a delivery job.
type JobID uuid.UUID

// NewJobID generates a fresh random job ID.
func NewJobID() JobID { return JobID(uuid.New()) }

// NewOwnerID generates a fresh random owner ID. Used by tests and seeds;
// production owner IDs come from the session provider.
func NewOwnerID() OwnerID { return OwnerID(uuid.New()) }

// ParseOwnerID parses a UUID string into an OwnerID. The nil UUID is
// rejected; a zero owner means "unauthenticated" and must never parse.
func ParseOwnerID(s string) (OwnerID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return OwnerID{}, dErrors.New(dErrors.CodeValidation, "owner id must be a valid non-nil UUID")
	}
	return OwnerID(u), nil
}

// ParseJobID parses a UUID string into a JobID. The nil UUID is rejected.
func ParseJobID(s string) (JobID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return JobID{}, dErrors.New(dErrors.CodeValidation, "job id must be a valid non-nil UUID")
	}
	return JobID(u), nil
}

func (id OwnerID) String() string { return uuid.UUID(id).String() }
func (id JobID) String() string   { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id OwnerID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id JobID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling so the IDs serialize as UUID strings in JSON and logs.
func (id OwnerID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id JobID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *OwnerID) UnmarshalText(b []byte) error {
	parsed, err := ParseOwnerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *JobID) UnmarshalText(b []byte) error {
	parsed, err := ParseJobID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
