//go:build integration

package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "herald/pkg/domain"
	"herald/pkg/platform/sentinel"
	"herald/pkg/requestcontext"
	"herald/pkg/testutil/containers"
)

const jobsSchema = `
CREATE TABLE delivery_jobs (
    id           UUID PRIMARY KEY,
    owner_id     UUID NOT NULL,
    message_ref  TEXT NOT NULL,
    office_ids   TEXT[] NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
)`

const resultsSchema = `
CREATE TABLE delivery_results (
    job_id          UUID NOT NULL REFERENCES delivery_jobs (id),
    office_id       TEXT NOT NULL,
    outcome         TEXT NOT NULL,
    confirmation_id TEXT,
    error_kind      TEXT NOT NULL DEFAULT '',
    attempted_at    TIMESTAMPTZ NOT NULL,
    attempt_count   INT NOT NULL,
    PRIMARY KEY (job_id, office_id)
)`

func newPostgresStore(t *testing.T) *Postgres {
	t.Helper()
	pg := containers.NewPostgresContainer(t, jobsSchema, resultsSchema)
	return NewPostgres(pg.DB)
}

func newPostgresJob() *DeliveryJob {
	return &DeliveryJob{
		ID:         id.NewJobID(),
		OwnerID:    id.NewOwnerID(),
		MessageRef: "msg-1",
		OfficeIDs:  []string{"us-sen-CA-1", "us-sen-CA-2", "us-rep-CA-12"},
		Results:    make(map[string]SubmissionResult),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgresStore(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	t.Run("create and find round trip", func(t *testing.T) {
		j := newPostgresJob()
		require.NoError(t, store.Create(ctx, j))

		got, err := store.FindByID(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, j.ID, got.ID)
		assert.Equal(t, j.OwnerID, got.OwnerID)
		assert.Equal(t, j.OfficeIDs, got.OfficeIDs)
		assert.Empty(t, got.Results)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		j := newPostgresJob()
		require.NoError(t, store.Create(ctx, j))
		require.ErrorIs(t, store.Create(ctx, j), sentinel.ErrConflict)
	})

	t.Run("empty target set is invalid", func(t *testing.T) {
		j := newPostgresJob()
		j.OfficeIDs = nil
		require.ErrorIs(t, store.Create(ctx, j), sentinel.ErrInvalidState)
	})

	t.Run("unknown job id is not found", func(t *testing.T) {
		_, err := store.FindByID(ctx, id.NewJobID())
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("record result upserts and stamps completion", func(t *testing.T) {
		j := newPostgresJob()
		require.NoError(t, store.Create(ctx, j))

		require.ErrorIs(t, store.RecordResult(ctx, j.ID, SubmissionResult{
			OfficeID:    "us-rep-TX-01",
			Outcome:     OutcomeSucceeded,
			AttemptedAt: time.Now(),
		}), sentinel.ErrInvalidState)

		conf := "conf-1"
		for _, officeID := range j.OfficeIDs[:2] {
			require.NoError(t, store.RecordResult(ctx, j.ID, SubmissionResult{
				OfficeID:       officeID,
				Outcome:        OutcomeSucceeded,
				ConfirmationID: &conf,
				AttemptedAt:    time.Now(),
				AttemptCount:   1,
			}))
		}

		// A redelivered failure for the first office overwrites its result.
		require.NoError(t, store.RecordResult(ctx, j.ID, SubmissionResult{
			OfficeID:     j.OfficeIDs[0],
			Outcome:      OutcomeFailed,
			ErrorKind:    ErrorKindPermanentUnreachable,
			AttemptedAt:  time.Now(),
			AttemptCount: 3,
		}))

		got, err := store.FindByID(ctx, j.ID)
		require.NoError(t, err)
		require.Len(t, got.Results, 2)
		assert.Equal(t, OutcomeFailed, got.Results[j.OfficeIDs[0]].Outcome)
		assert.Nil(t, got.CompletedAt)
		assert.Equal(t, StatusProcessing, got.Status())

		completedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		tctx := requestcontext.WithTime(ctx, completedAt)
		require.NoError(t, store.RecordResult(tctx, j.ID, SubmissionResult{
			OfficeID:     j.OfficeIDs[2],
			Outcome:      OutcomeSucceeded,
			AttemptedAt:  completedAt,
			AttemptCount: 1,
		}))

		got, err = store.FindByID(ctx, j.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CompletedAt)
		assert.Equal(t, completedAt, got.CompletedAt.UTC())
		assert.Equal(t, StatusPartial, got.Status())
		assert.Equal(t, 100, got.Progress())
	})
}
