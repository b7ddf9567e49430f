//go:build !integration

package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

func TestWorkerDisabled(t *testing.T) {
	fakeUseCase := &fakeProcessUseCase{}
	worker := NewWorker(
		false,
		10*time.Millisecond,
		10,
		"relay-worker-a",
		2*time.Minute,
		60*time.Second,
		30*time.Second,
		3,
		fakeUseCase,
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	worker.Start(ctx)

	if fakeUseCase.calls() != 0 {
		t.Fatalf("expected no calls for disabled worker, got %d", fakeUseCase.calls())
	}
}

func TestWorkerRunsCycleWithRelayConfig(t *testing.T) {
	fakeUseCase := &fakeProcessUseCase{}
	worker := NewWorker(
		true,
		10*time.Millisecond,
		25,
		"relay-worker-a",
		2*time.Minute,
		60*time.Second,
		30*time.Second,
		3,
		fakeUseCase,
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	worker.Start(ctx)

	if fakeUseCase.calls() == 0 {
		t.Fatalf("expected at least one cycle call")
	}
	last := fakeUseCase.lastCommand()
	if last.WorkerID != "relay-worker-a" {
		t.Fatalf("expected worker id relay-worker-a, got %s", last.WorkerID)
	}
	if last.BatchSize != 25 {
		t.Fatalf("expected batch size 25, got %d", last.BatchSize)
	}
	if last.LeaseDuration != 2*time.Minute {
		t.Fatalf("expected lease duration 2m, got %s", last.LeaseDuration)
	}
	if last.FetchBackoffBase != 60*time.Second {
		t.Fatalf("expected fetch backoff base 60s, got %s", last.FetchBackoffBase)
	}
	if last.ForwardBackoffBase != 30*time.Second {
		t.Fatalf("expected forward backoff base 30s, got %s", last.ForwardBackoffBase)
	}
	if last.RetryBudget != 3 {
		t.Fatalf("expected retry budget 3, got %d", last.RetryBudget)
	}
}

func TestWorkerKeepsPollingAfterCycleError(t *testing.T) {
	fakeUseCase := &fakeProcessUseCase{
		appErr: apperrors.NewInternal("relay_job_query_failed", "failed to claim relay jobs", nil),
	}
	worker := NewWorker(
		true,
		10*time.Millisecond,
		10,
		"relay-worker-a",
		2*time.Minute,
		60*time.Second,
		30*time.Second,
		3,
		fakeUseCase,
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(45 * time.Millisecond)
		cancel()
	}()

	worker.Start(ctx)

	if fakeUseCase.calls() < 2 {
		t.Fatalf("expected worker to keep polling after errors, got %d calls", fakeUseCase.calls())
	}
}

type fakeProcessUseCase struct {
	mu        sync.Mutex
	callCount int
	last      dto.ProcessRelayJobsCommand
	appErr    *apperrors.AppError
}

func (f *fakeProcessUseCase) Execute(_ context.Context, command dto.ProcessRelayJobsCommand) (dto.ProcessRelayJobsOutput, *apperrors.AppError) {
	f.mu.Lock()
	f.callCount++
	f.last = command
	f.mu.Unlock()

	if f.appErr != nil {
		return dto.ProcessRelayJobsOutput{}, f.appErr
	}
	return dto.ProcessRelayJobsOutput{}, nil
}

func (f *fakeProcessUseCase) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

func (f *fakeProcessUseCase) lastCommand() dto.ProcessRelayJobsCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
