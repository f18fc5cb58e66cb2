package job

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	id "herald/pkg/domain"
	"herald/pkg/platform/sentinel"
	"herald/pkg/requestcontext"
)

// Postgres persists delivery jobs in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE delivery_jobs (
//	    id           UUID PRIMARY KEY,
//	    owner_id     UUID NOT NULL,
//	    message_ref  TEXT NOT NULL,
//	    office_ids   TEXT[] NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    completed_at TIMESTAMPTZ
//	);
//
//	CREATE TABLE delivery_results (
//	    job_id          UUID NOT NULL REFERENCES delivery_jobs (id),
//	    office_id       TEXT NOT NULL,
//	    outcome         TEXT NOT NULL,
//	    confirmation_id TEXT,
//	    error_kind      TEXT NOT NULL DEFAULT '',
//	    attempted_at    TIMESTAMPTZ NOT NULL,
//	    attempt_count   INT NOT NULL,
//	    PRIMARY KEY (job_id, office_id)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, j *DeliveryJob) error {
	if len(j.OfficeIDs) == 0 {
		return sentinel.ErrInvalidState
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_jobs (id, owner_id, message_ref, office_ids, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, j.ID.String(), j.OwnerID.String(), j.MessageRef, pq.Array(j.OfficeIDs), j.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create delivery job: %w", err)
	}
	return nil
}

func (s *Postgres) RecordResult(ctx context.Context, jobID id.JobID, result SubmissionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record result: %w", err)
	}
	defer tx.Rollback()

	var officeIDs []string
	err = tx.QueryRowContext(ctx, `
		SELECT office_ids FROM delivery_jobs WHERE id = $1 FOR UPDATE
	`, jobID.String()).Scan(pq.Array(&officeIDs))
	if err != nil {
		if err == sql.ErrNoRows {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("load job for result: %w", err)
	}

	targeted := false
	for _, oid := range officeIDs {
		if oid == result.OfficeID {
			targeted = true
			break
		}
	}
	if !targeted {
		return sentinel.ErrInvalidState
	}

	// Upsert keyed by (job_id, office_id): last write wins, never a
	// duplicate row.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO delivery_results (job_id, office_id, outcome, confirmation_id, error_kind, attempted_at, attempt_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_id, office_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			confirmation_id = EXCLUDED.confirmation_id,
			error_kind = EXCLUDED.error_kind,
			attempted_at = EXCLUDED.attempted_at,
			attempt_count = EXCLUDED.attempt_count
	`, jobID.String(), result.OfficeID, string(result.Outcome), result.ConfirmationID,
		string(result.ErrorKind), result.AttemptedAt, result.AttemptCount)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	var terminal int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM delivery_results
		WHERE job_id = $1 AND outcome IN ('succeeded', 'failed')
	`, jobID.String()).Scan(&terminal)
	if err != nil {
		return fmt.Errorf("count terminal results: %w", err)
	}
	if terminal == len(officeIDs) {
		_, err = tx.ExecContext(ctx, `
			UPDATE delivery_jobs SET completed_at = $2
			WHERE id = $1 AND completed_at IS NULL
		`, jobID.String(), requestcontext.Now(ctx))
		if err != nil {
			return fmt.Errorf("stamp completed_at: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Postgres) FindByID(ctx context.Context, jobID id.JobID) (*DeliveryJob, error) {
	var (
		j          DeliveryJob
		jobIDStr   string
		ownerIDStr string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, message_ref, office_ids, created_at, completed_at
		FROM delivery_jobs WHERE id = $1
	`, jobID.String()).Scan(&jobIDStr, &ownerIDStr, &j.MessageRef, pq.Array(&j.OfficeIDs), &j.CreatedAt, &j.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find delivery job: %w", err)
	}
	if j.ID, err = id.ParseJobID(jobIDStr); err != nil {
		return nil, fmt.Errorf("parse job id: %w", err)
	}
	if j.OwnerID, err = id.ParseOwnerID(ownerIDStr); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}

	j.Results = make(map[string]SubmissionResult)
	rows, err := s.db.QueryContext(ctx, `
		SELECT office_id, outcome, confirmation_id, error_kind, attempted_at, attempt_count
		FROM delivery_results WHERE job_id = $1
	`, jobID.String())
	if err != nil {
		return nil, fmt.Errorf("list job results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r       SubmissionResult
			outcome string
			kind    string
		)
		if err := rows.Scan(&r.OfficeID, &outcome, &r.ConfirmationID, &kind, &r.AttemptedAt, &r.AttemptCount); err != nil {
			return nil, fmt.Errorf("scan job result: %w", err)
		}
		r.Outcome = Outcome(outcome)
		r.ErrorKind = ErrorKind(kind)
		j.Results[r.OfficeID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job results: %w", err)
	}

	return &j, nil
}
