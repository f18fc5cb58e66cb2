package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "herald/pkg/domain"
	"herald/pkg/platform/sentinel"
	"herald/pkg/requestcontext"
)

const (
	// Redis key prefix for delivery jobs
	jobKeyPrefix = "job:"

	metaField        = "meta"
	completedAtField = "completed_at"
	resultFieldPfx   = "result:"
)

// Redis is a Redis-backed job store for distributed deployments where
// multiple instances share job state. One hash per job: a meta field, an
// optional completed_at field, and one result:<office> field per recorded
// result. HSET per office gives last-write-wins without cross-office locks.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type redisJobMeta struct {
	OwnerID    string    `json:"owner_id"`
	MessageRef string    `json:"message_ref"`
	OfficeIDs  []string  `json:"office_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

type redisResult struct {
	OfficeID       string    `json:"office_id"`
	Outcome        string    `json:"outcome"`
	ConfirmationID *string   `json:"confirmation_id"`
	ErrorKind      string    `json:"error_kind"`
	AttemptedAt    time.Time `json:"attempted_at"`
	AttemptCount   int       `json:"attempt_count"`
}

func (s *Redis) Create(ctx context.Context, j *DeliveryJob) error {
	if len(j.OfficeIDs) == 0 {
		return sentinel.ErrInvalidState
	}

	meta, err := json.Marshal(redisJobMeta{
		OwnerID:    j.OwnerID.String(),
		MessageRef: j.MessageRef,
		OfficeIDs:  j.OfficeIDs,
		CreatedAt:  j.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal job meta: %w", err)
	}

	key := jobKeyPrefix + j.ID.String()
	set, err := s.client.HSetNX(ctx, key, metaField, meta).Result()
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if !set {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Redis) RecordResult(ctx context.Context, jobID id.JobID, result SubmissionResult) error {
	key := jobKeyPrefix + jobID.String()

	meta, err := s.loadMeta(ctx, key)
	if err != nil {
		return err
	}

	targeted := false
	for _, oid := range meta.OfficeIDs {
		if oid == result.OfficeID {
			targeted = true
			break
		}
	}
	if !targeted {
		return sentinel.ErrInvalidState
	}

	payload, err := json.Marshal(redisResult{
		OfficeID:       result.OfficeID,
		Outcome:        string(result.Outcome),
		ConfirmationID: result.ConfirmationID,
		ErrorKind:      string(result.ErrorKind),
		AttemptedAt:    result.AttemptedAt,
		AttemptCount:   result.AttemptCount,
	})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if err := s.client.HSet(ctx, key, resultFieldPfx+result.OfficeID, payload).Err(); err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	// Stamp completion when every office is terminal. HSETNX keeps the
	// first stamp if two workers race on the final result.
	j, err := s.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.TerminalCount() == len(j.OfficeIDs) {
		stamp, _ := requestcontext.Now(ctx).MarshalText()
		if err := s.client.HSetNX(ctx, key, completedAtField, stamp).Err(); err != nil {
			return fmt.Errorf("stamp completed_at: %w", err)
		}
	}
	return nil
}

func (s *Redis) FindByID(ctx context.Context, jobID id.JobID) (*DeliveryJob, error) {
	key := jobKeyPrefix + jobID.String()

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}

	rawMeta, ok := fields[metaField]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	var meta redisJobMeta
	if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal job meta: %w", err)
	}

	ownerID, err := id.ParseOwnerID(meta.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}

	j := &DeliveryJob{
		ID:         jobID,
		OwnerID:    ownerID,
		MessageRef: meta.MessageRef,
		OfficeIDs:  meta.OfficeIDs,
		Results:    make(map[string]SubmissionResult),
		CreatedAt:  meta.CreatedAt,
	}

	for field, raw := range fields {
		switch {
		case field == completedAtField:
			var t time.Time
			if err := t.UnmarshalText([]byte(raw)); err != nil {
				return nil, fmt.Errorf("parse completed_at: %w", err)
			}
			j.CompletedAt = &t
		case len(field) > len(resultFieldPfx) && field[:len(resultFieldPfx)] == resultFieldPfx:
			var rr redisResult
			if err := json.Unmarshal([]byte(raw), &rr); err != nil {
				return nil, fmt.Errorf("unmarshal result %s: %w", field, err)
			}
			j.Results[rr.OfficeID] = SubmissionResult{
				OfficeID:       rr.OfficeID,
				Outcome:        Outcome(rr.Outcome),
				ConfirmationID: rr.ConfirmationID,
				ErrorKind:      ErrorKind(rr.ErrorKind),
				AttemptedAt:    rr.AttemptedAt,
				AttemptCount:   rr.AttemptCount,
			}
		}
	}
	return j, nil
}

func (s *Redis) loadMeta(ctx context.Context, key string) (*redisJobMeta, error) {
	raw, err := s.client.HGet(ctx, key, metaField).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job meta: %w", err)
	}
	var meta redisJobMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal job meta: %w", err)
	}
	return &meta, nil
}
