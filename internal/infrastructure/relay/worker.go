package relay

import (
	"context"
	"log"
	"time"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
)

// Worker polls the relay job queue and drives claimed jobs through the
// fetch and forward stages.
type Worker struct {
	enabled            bool
	pollInterval       time.Duration
	batchSize          int
	workerID           string
	leaseDuration      time.Duration
	fetchBackoffBase   time.Duration
	forwardBackoffBase time.Duration
	retryBudget        int
	processUseCase     portsin.ProcessRelayJobsUseCase
	logger             *log.Logger
}

func NewWorker(
	enabled bool,
	pollInterval time.Duration,
	batchSize int,
	workerID string,
	leaseDuration time.Duration,
	fetchBackoffBase time.Duration,
	forwardBackoffBase time.Duration,
	retryBudget int,
	processUseCase portsin.ProcessRelayJobsUseCase,
	logger *log.Logger,
) *Worker {
	return &Worker{
		enabled:            enabled,
		pollInterval:       pollInterval,
		batchSize:          batchSize,
		workerID:           workerID,
		leaseDuration:      leaseDuration,
		fetchBackoffBase:   fetchBackoffBase,
		forwardBackoffBase: forwardBackoffBase,
		retryBudget:        retryBudget,
		processUseCase:     processUseCase,
		logger:             logger,
	}
}

func (w *Worker) Enabled() bool {
	return w != nil && w.enabled
}

func (w *Worker) Start(ctx context.Context) {
	if w == nil || !w.enabled || w.processUseCase == nil {
		return
	}

	w.logf(
		"relay worker started worker_id=%s poll_interval=%s batch_size=%d lease_duration=%s retry_budget=%d",
		w.workerID,
		w.pollInterval,
		w.batchSize,
		w.leaseDuration,
		w.retryBudget,
	)

	w.runCycle(ctx)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("relay worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	startedAt := time.Now().UTC()
	output, appErr := w.processUseCase.Execute(ctx, dto.ProcessRelayJobsCommand{
		Now:                startedAt,
		BatchSize:          w.batchSize,
		WorkerID:           w.workerID,
		LeaseDuration:      w.leaseDuration,
		FetchBackoffBase:   w.fetchBackoffBase,
		ForwardBackoffBase: w.forwardBackoffBase,
		RetryBudget:        w.retryBudget,
	})
	if appErr != nil {
		w.logf(
			"relay cycle failed code=%s message=%s details=%v",
			appErr.Code,
			appErr.Message,
			appErr.Details,
		)
		return
	}

	w.logf(
		"relay cycle completed worker_id=%s claimed=%d advanced=%d forwarded=%d retried=%d abandoned=%d skipped=%d errors=%d latency_ms=%d",
		w.workerID,
		output.Claimed,
		output.Advanced,
		output.Forwarded,
		output.Retried,
		output.Abandoned,
		output.Skipped,
		output.Errors,
		time.Since(startedAt).Milliseconds(),
	)
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}
