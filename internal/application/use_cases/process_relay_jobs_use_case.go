package use_cases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
	portsout "leadrelay/internal/application/ports/out"
	valueobjects "leadrelay/internal/domain/value_objects"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type processRelayJobsUseCase struct {
	repository     portsout.RelayJobRepository
	fetchGateway   portsout.LeadFetchGateway
	forwardGateway portsout.LeadForwardGateway
}

func NewProcessRelayJobsUseCase(
	repository portsout.RelayJobRepository,
	fetchGateway portsout.LeadFetchGateway,
	forwardGateway portsout.LeadForwardGateway,
) portsin.ProcessRelayJobsUseCase {
	return &processRelayJobsUseCase{
		repository:     repository,
		fetchGateway:   fetchGateway,
		forwardGateway: forwardGateway,
	}
}

func (u *processRelayJobsUseCase) Execute(
	ctx context.Context,
	command dto.ProcessRelayJobsCommand,
) (dto.ProcessRelayJobsOutput, *apperrors.AppError) {
	if u.repository == nil {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewInternal(
			"relay_job_repository_missing",
			"relay job repository is required",
			nil,
		)
	}
	if u.fetchGateway == nil {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewInternal(
			"lead_fetch_gateway_missing",
			"lead fetch gateway is required",
			nil,
		)
	}
	if u.forwardGateway == nil {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewInternal(
			"lead_forward_gateway_missing",
			"lead forward gateway is required",
			nil,
		)
	}
	if command.BatchSize <= 0 {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewValidation(
			"process_relay_batch_size_invalid",
			"relay batch size must be greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}
	workerID := strings.TrimSpace(command.WorkerID)
	if workerID == "" {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewValidation(
			"process_relay_worker_id_invalid",
			"relay worker id is required",
			nil,
		)
	}
	if command.LeaseDuration <= 0 {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewValidation(
			"process_relay_lease_duration_invalid",
			"relay lease duration must be greater than zero",
			map[string]any{"lease_duration": command.LeaseDuration.String()},
		)
	}
	if command.FetchBackoffBase <= 0 || command.ForwardBackoffBase <= 0 {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewValidation(
			"process_relay_backoff_base_invalid",
			"relay backoff bases must be greater than zero",
			map[string]any{
				"fetch_backoff_base":   command.FetchBackoffBase.String(),
				"forward_backoff_base": command.ForwardBackoffBase.String(),
			},
		)
	}
	if command.RetryBudget <= 0 {
		return dto.ProcessRelayJobsOutput{}, apperrors.NewValidation(
			"process_relay_retry_budget_invalid",
			"relay retry budget must be greater than zero",
			map[string]any{"retry_budget": command.RetryBudget},
		)
	}
	heartbeatInterval, heartbeatIntervalErr := relayLeaseHeartbeatInterval(command.LeaseDuration)
	if heartbeatIntervalErr != nil {
		return dto.ProcessRelayJobsOutput{}, heartbeatIntervalErr
	}

	startedAt := time.Now().UTC()
	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = startedAt
	}
	leaseUntil := now.Add(command.LeaseDuration)

	jobs, claimErr := u.repository.ClaimDue(ctx, now, command.BatchSize, workerID, leaseUntil)
	if claimErr != nil {
		return dto.ProcessRelayJobsOutput{}, claimErr
	}

	output := dto.ProcessRelayJobsOutput{
		Claimed: len(jobs),
	}
	for _, job := range jobs {
		stage, stageErr := valueobjects.ParseRelayStage(job.Stage)
		if stageErr != nil {
			output.Errors++
			output.Skipped++
			continue
		}

		heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
		heartbeatErrCh := make(chan *apperrors.AppError, 1)
		heartbeatDoneCh := make(chan struct{})
		go func(jobID int64) {
			defer close(heartbeatDoneCh)
			u.runLeaseHeartbeat(
				heartbeatCtx,
				jobID,
				workerID,
				command.LeaseDuration,
				heartbeatInterval,
				heartbeatErrCh,
			)
		}(job.ID)

		var stepErr *apperrors.AppError
		switch stage {
		case valueobjects.RelayStageFetchLead:
			stepErr = u.runFetchStage(ctx, job, workerID, now, command, &output)
		case valueobjects.RelayStageForwardLead:
			stepErr = u.runForwardStage(ctx, job, workerID, now, command, &output)
		}
		stopHeartbeat()
		<-heartbeatDoneCh
		if stepErr != nil {
			return output, stepErr
		}
		if heartbeatErr := drainRelayHeartbeatError(heartbeatErrCh); heartbeatErr != nil {
			return output, heartbeatErr
		}
	}

	output.LatencyMS = time.Since(startedAt).Milliseconds()
	return output, nil
}

// runFetchStage executes stage one: fetch the full lead record from the
// partner API. Success advances the job to the forward stage with a fresh
// retry budget; failure consumes only the fetch stage's budget.
func (u *processRelayJobsUseCase) runFetchStage(
	ctx context.Context,
	job dto.ClaimedRelayJob,
	workerID string,
	now time.Time,
	command dto.ProcessRelayJobsCommand,
	output *dto.ProcessRelayJobsOutput,
) *apperrors.AppError {
	fetched, fetchErr := u.fetchGateway.FetchLead(ctx, dto.FetchLeadInput{
		LeadID:   job.LeadID,
		DealerID: job.DealerID,
	})
	if fetchErr == nil {
		updated, advanceErr := u.repository.AdvanceToForward(ctx, job.ID, workerID, fetched.Payload, now)
		if advanceErr != nil {
			return advanceErr
		}
		if updated {
			output.Advanced++
		} else {
			output.Skipped++
		}
		return nil
	}

	output.Errors++
	return u.recordStageFailure(
		ctx,
		job,
		workerID,
		now,
		command.FetchBackoffBase,
		command.RetryBudget,
		relayStageErrorMessage(fetchErr),
		output,
	)
}

// runForwardStage executes stage two: forward the fetched record downstream.
func (u *processRelayJobsUseCase) runForwardStage(
	ctx context.Context,
	job dto.ClaimedRelayJob,
	workerID string,
	now time.Time,
	command dto.ProcessRelayJobsCommand,
	output *dto.ProcessRelayJobsOutput,
) *apperrors.AppError {
	_, forwardErr := u.forwardGateway.ForwardLead(ctx, dto.ForwardLeadInput{
		LeadID:   job.LeadID,
		DealerID: job.DealerID,
		Payload:  job.LeadPayload,
	})
	if forwardErr == nil {
		updated, doneErr := u.repository.MarkDone(ctx, job.ID, workerID, now)
		if doneErr != nil {
			return doneErr
		}
		if updated {
			output.Forwarded++
		} else {
			output.Skipped++
		}
		return nil
	}

	output.Errors++
	return u.recordStageFailure(
		ctx,
		job,
		workerID,
		now,
		command.ForwardBackoffBase,
		command.RetryBudget,
		relayStageErrorMessage(forwardErr),
		output,
	)
}

func (u *processRelayJobsUseCase) recordStageFailure(
	ctx context.Context,
	job dto.ClaimedRelayJob,
	workerID string,
	now time.Time,
	backoffBase time.Duration,
	retryBudget int,
	errorMessage string,
	output *dto.ProcessRelayJobsOutput,
) *apperrors.AppError {
	nextAttempts := job.Attempts + 1
	if nextAttempts > retryBudget {
		updated, markErr := u.repository.MarkAbandoned(ctx, job.ID, workerID, nextAttempts, errorMessage, now)
		if markErr != nil {
			return markErr
		}
		if updated {
			output.Abandoned++
		} else {
			output.Skipped++
		}
		return nil
	}

	nextAttemptAt := now.Add(relayRetryBackoff(backoffBase, nextAttempts))
	updated, markErr := u.repository.MarkRetry(ctx, job.ID, workerID, nextAttempts, nextAttemptAt, errorMessage, now)
	if markErr != nil {
		return markErr
	}
	if updated {
		output.Retried++
	} else {
		output.Skipped++
	}
	return nil
}

func (u *processRelayJobsUseCase) runLeaseHeartbeat(
	ctx context.Context,
	jobID int64,
	workerID string,
	leaseDuration time.Duration,
	interval time.Duration,
	errorCh chan<- *apperrors.AppError,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case tickAt := <-ticker.C:
			if appErr := u.renewRelayLease(ctx, jobID, workerID, leaseDuration, tickAt.UTC()); appErr != nil {
				reportRelayHeartbeatError(errorCh, appErr)
				return
			}
		}
	}
}

func (u *processRelayJobsUseCase) renewRelayLease(
	ctx context.Context,
	jobID int64,
	workerID string,
	leaseDuration time.Duration,
	updatedAt time.Time,
) *apperrors.AppError {
	renewed, renewErr := u.repository.RenewLease(ctx, jobID, workerID, updatedAt.Add(leaseDuration), updatedAt)
	if renewErr != nil {
		return apperrors.NewInternal(
			"relay_lease_renew_failed",
			"failed to renew relay job lease",
			map[string]any{
				"job_id":    jobID,
				"worker_id": workerID,
				"error":     renewErr.Message,
			},
		)
	}
	if !renewed {
		return apperrors.NewInternal(
			"relay_lease_lost",
			"relay job lease ownership was lost mid stage",
			map[string]any{
				"job_id":    jobID,
				"worker_id": workerID,
			},
		)
	}
	return nil
}

func relayLeaseHeartbeatInterval(leaseDuration time.Duration) (time.Duration, *apperrors.AppError) {
	interval := leaseDuration / 3
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	if interval >= leaseDuration {
		interval = leaseDuration / 2
	}
	if interval <= 0 || interval >= leaseDuration {
		return 0, apperrors.NewValidation(
			"process_relay_lease_heartbeat_interval_invalid",
			"relay lease duration is too small for heartbeat interval",
			map[string]any{"lease_duration": leaseDuration.String()},
		)
	}
	return interval, nil
}

func reportRelayHeartbeatError(errorCh chan<- *apperrors.AppError, appErr *apperrors.AppError) {
	if appErr == nil {
		return
	}
	select {
	case errorCh <- appErr:
	default:
	}
}

func drainRelayHeartbeatError(errorCh <-chan *apperrors.AppError) *apperrors.AppError {
	select {
	case appErr := <-errorCh:
		return appErr
	default:
		return nil
	}
}

func relayStageErrorMessage(appErr *apperrors.AppError) string {
	if appErr == nil {
		return "relay stage failed"
	}

	message := strings.TrimSpace(appErr.Message)
	if message == "" {
		message = strings.TrimSpace(appErr.Code)
	}
	if message == "" {
		message = "relay stage failed"
	}
	if statusCode, exists := appErr.Details["status_code"]; exists {
		return fmt.Sprintf("%s (status %v)", message, statusCode)
	}
	return message
}

// relayRetryBackoff doubles the stage's base delay per recorded attempt:
// base*2 after the first failure, base*4 after the second, and so on.
func relayRetryBackoff(base time.Duration, attempts int) time.Duration {
	if attempts <= 0 {
		return base
	}

	backoff := base
	for i := 0; i < attempts; i++ {
		backoff *= 2
	}
	return backoff
}
