package relayjob

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"leadrelay/internal/application/dto"
	portsout "leadrelay/internal/application/ports/out"
	valueobjects "leadrelay/internal/domain/value_objects"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type Repository struct {
	db *sql.DB
}

var _ portsout.RelayJobRepository = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnqueueFetchLead(
	ctx context.Context,
	dealerID int64,
	leadID string,
	now time.Time,
) (int64, *apperrors.AppError) {
	const query = `
INSERT INTO app.relay_jobs (
  dealer_id,
  lead_id,
  stage,
  status,
  attempts,
  next_attempt_at,
  created_at,
  updated_at
)
VALUES ($1, $2, $3, $4, 0, $5, $5, $5)
RETURNING id
`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		dealerID,
		strings.TrimSpace(leadID),
		string(valueobjects.RelayStageFetchLead),
		string(valueobjects.RelayJobStatusPending),
		now.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewInternal(
			"relay_job_insert_failed",
			"failed to enqueue relay job",
			map[string]any{"error": err.Error()},
		)
	}

	return id, nil
}

func (r *Repository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit int,
	leaseOwner string,
	leaseUntil time.Time,
) ([]dto.ClaimedRelayJob, *apperrors.AppError) {
	const query = `
WITH candidates AS (
  SELECT id
  FROM app.relay_jobs
  WHERE status = 'pending'
    AND next_attempt_at <= $1
    AND (lease_until IS NULL OR lease_until <= $1)
  ORDER BY created_at ASC, id ASC
  LIMIT $2
  FOR UPDATE SKIP LOCKED
)
UPDATE app.relay_jobs AS j
SET
  lease_owner = $3,
  lease_until = $4,
  updated_at = $1
FROM candidates
WHERE j.id = candidates.id
RETURNING
  j.id,
  j.dealer_id,
  j.lead_id,
  j.stage,
  j.attempts,
  j.lead_payload
`

	rows, err := r.db.QueryContext(
		ctx,
		query,
		now.UTC(),
		limit,
		strings.TrimSpace(leaseOwner),
		leaseUntil.UTC(),
	)
	if err != nil {
		return nil, apperrors.NewInternal(
			"relay_job_query_failed",
			"failed to claim relay jobs",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	items := make([]dto.ClaimedRelayJob, 0, limit)
	for rows.Next() {
		item := dto.ClaimedRelayJob{}
		payload := []byte(nil)
		if err := rows.Scan(
			&item.ID,
			&item.DealerID,
			&item.LeadID,
			&item.Stage,
			&item.Attempts,
			&payload,
		); err != nil {
			return nil, apperrors.NewInternal(
				"relay_job_query_failed",
				"failed to parse claimed relay job",
				map[string]any{"error": err.Error()},
			)
		}
		item.LeadPayload = payload
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"relay_job_query_failed",
			"failed while iterating claimed relay jobs",
			map[string]any{"error": err.Error()},
		)
	}

	return items, nil
}

// AdvanceToForward swaps a fetched job into the forward stage with a fresh
// attempt counter and makes it immediately due, so any worker can pick it
// up on the next poll.
func (r *Repository) AdvanceToForward(
	ctx context.Context,
	id int64,
	leaseOwner string,
	leadPayload []byte,
	updatedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE app.relay_jobs
SET
  stage = $3,
  attempts = 0,
  lead_payload = $4,
  last_error = NULL,
  next_attempt_at = $5,
  lease_owner = NULL,
  lease_until = NULL,
  updated_at = $5
WHERE id = $1
  AND status = 'pending'
  AND (lease_owner IS NULL OR lease_owner = $2)
`
	return execRowsAffected(
		ctx,
		r.db,
		query,
		id,
		strings.TrimSpace(leaseOwner),
		string(valueobjects.RelayStageForwardLead),
		leadPayload,
		updatedAt.UTC(),
	)
}

func (r *Repository) MarkDone(
	ctx context.Context,
	id int64,
	leaseOwner string,
	completedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE app.relay_jobs
SET
  status = 'done',
  completed_at = $3,
  last_error = NULL,
  lease_owner = NULL,
  lease_until = NULL,
  updated_at = $3
WHERE id = $1
  AND status = 'pending'
  AND (lease_owner IS NULL OR lease_owner = $2)
`
	return execRowsAffected(ctx, r.db, query, id, strings.TrimSpace(leaseOwner), completedAt.UTC())
}

func (r *Repository) MarkRetry(
	ctx context.Context,
	id int64,
	leaseOwner string,
	attempts int,
	nextAttemptAt time.Time,
	lastError string,
	updatedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE app.relay_jobs
SET
  attempts = $3,
  next_attempt_at = $4,
  last_error = $5,
  lease_owner = NULL,
  lease_until = NULL,
  updated_at = $6
WHERE id = $1
  AND status = 'pending'
  AND (lease_owner IS NULL OR lease_owner = $2)
`
	return execRowsAffected(
		ctx,
		r.db,
		query,
		id,
		strings.TrimSpace(leaseOwner),
		attempts,
		nextAttemptAt.UTC(),
		strings.TrimSpace(lastError),
		updatedAt.UTC(),
	)
}

func (r *Repository) MarkAbandoned(
	ctx context.Context,
	id int64,
	leaseOwner string,
	attempts int,
	lastError string,
	updatedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE app.relay_jobs
SET
  status = 'abandoned',
  attempts = $3,
  last_error = $4,
  lease_owner = NULL,
  lease_until = NULL,
  updated_at = $5
WHERE id = $1
  AND status = 'pending'
  AND (lease_owner IS NULL OR lease_owner = $2)
`
	return execRowsAffected(
		ctx,
		r.db,
		query,
		id,
		strings.TrimSpace(leaseOwner),
		attempts,
		strings.TrimSpace(lastError),
		updatedAt.UTC(),
	)
}

func (r *Repository) RenewLease(
	ctx context.Context,
	id int64,
	leaseOwner string,
	leaseUntil time.Time,
	updatedAt time.Time,
) (bool, *apperrors.AppError) {
	const query = `
UPDATE app.relay_jobs
SET
  lease_until = $3,
  updated_at = $4
WHERE id = $1
  AND status = 'pending'
  AND lease_owner = $2
`
	return execRowsAffected(
		ctx,
		r.db,
		query,
		id,
		strings.TrimSpace(leaseOwner),
		leaseUntil.UTC(),
		updatedAt.UTC(),
	)
}

func execRowsAffected(
	ctx context.Context,
	db *sql.DB,
	query string,
	args ...any,
) (bool, *apperrors.AppError) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternal(
			"relay_job_update_failed",
			"failed to update relay job",
			map[string]any{"error": err.Error()},
		)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternal(
			"relay_job_update_failed",
			"failed to verify relay job update",
			map[string]any{"error": err.Error()},
		)
	}
	return rowsAffected == 1, nil
}
