package out

import (
	"context"
	"time"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

// RelayJobRepository is the durable queue behind the two-stage relay
// pipeline. Claimed jobs are owned by a single lease holder until the lease
// expires or a Mark* call releases them.
type RelayJobRepository interface {
	EnqueueFetchLead(
		ctx context.Context,
		dealerID int64,
		leadID string,
		now time.Time,
	) (int64, *apperrors.AppError)
	ClaimDue(
		ctx context.Context,
		now time.Time,
		limit int,
		leaseOwner string,
		leaseUntil time.Time,
	) ([]dto.ClaimedRelayJob, *apperrors.AppError)
	AdvanceToForward(
		ctx context.Context,
		id int64,
		leaseOwner string,
		leadPayload []byte,
		updatedAt time.Time,
	) (bool, *apperrors.AppError)
	MarkDone(
		ctx context.Context,
		id int64,
		leaseOwner string,
		completedAt time.Time,
	) (bool, *apperrors.AppError)
	MarkRetry(
		ctx context.Context,
		id int64,
		leaseOwner string,
		attempts int,
		nextAttemptAt time.Time,
		lastError string,
		updatedAt time.Time,
	) (bool, *apperrors.AppError)
	MarkAbandoned(
		ctx context.Context,
		id int64,
		leaseOwner string,
		attempts int,
		lastError string,
		updatedAt time.Time,
	) (bool, *apperrors.AppError)
	RenewLease(
		ctx context.Context,
		id int64,
		leaseOwner string,
		leaseUntil time.Time,
		updatedAt time.Time,
	) (bool, *apperrors.AppError)
}
