//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"leadrelay/internal/application/dto"
	"leadrelay/internal/domain/policies"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

const sampleLeadBody = `{
	"name": "select.lead.created",
	"uuid": "bc65cf8a-6a3e-11ed-a1eb-0242ac120002",
	"payload": {"id": "32656d0b-2268-4189-b6c1-19e647cb84ae"},
	"occurredAt": "2022-11-23T00:30:00.000Z"
}`

func TestIngestLeadWebhookAcceptsSignedEvent(t *testing.T) {
	body := []byte(sampleLeadBody)
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	repo := &fakeRelayJobRepository{}
	useCase := NewIngestLeadWebhookUseCase(registry, repo, fixedClock{})

	output, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: policies.ComputeWebhookSignature(body, "s3cr3t"),
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.LeadID != "32656d0b-2268-4189-b6c1-19e647cb84ae" {
		t.Fatalf("expected lead id from payload, got %s", output.LeadID)
	}
	if len(repo.enqueued) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(repo.enqueued))
	}
	if repo.enqueued[0].dealerID != 123 || repo.enqueued[0].leadID != output.LeadID {
		t.Fatalf("expected job for dealer 123 lead %s, got %+v", output.LeadID, repo.enqueued[0])
	}
}

func TestIngestLeadWebhookRejectsInvalidSignature(t *testing.T) {
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	repo := &fakeRelayJobRepository{}
	useCase := NewIngestLeadWebhookUseCase(registry, repo, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   []byte(sampleLeadBody),
		Signature: "deadbeef",
	})
	if appErr == nil || appErr.Type != apperrors.TypeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", appErr)
	}
	if len(repo.enqueued) != 0 {
		t.Fatalf("expected no enqueued job, got %d", len(repo.enqueued))
	}
}

func TestIngestLeadWebhookRejectsUnknownDealer(t *testing.T) {
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	useCase := NewIngestLeadWebhookUseCase(registry, &fakeRelayJobRepository{}, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  999,
		RawBody:   []byte(sampleLeadBody),
		Signature: "deadbeef",
	})
	if appErr == nil || appErr.Type != apperrors.TypeNotFound {
		t.Fatalf("expected not_found, got %+v", appErr)
	}
	if appErr.Code != "dealer_signing_key_not_found" {
		t.Fatalf("expected dealer_signing_key_not_found, got %s", appErr.Code)
	}
}

func TestIngestLeadWebhookIgnoresForeignEventNames(t *testing.T) {
	body := []byte(`{"name":"select.lead.updated","uuid":"bc65cf8a-6a3e-11ed-a1eb-0242ac120002","payload":{"id":"x"},"occurredAt":"2022-11-23T00:30:00Z"}`)
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	repo := &fakeRelayJobRepository{}
	useCase := NewIngestLeadWebhookUseCase(registry, repo, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: "anything",
	})
	if appErr == nil || appErr.Type != apperrors.TypeIgnored {
		t.Fatalf("expected ignored, got %+v", appErr)
	}
	if registry.calls != 0 {
		t.Fatalf("expected no key lookup for a foreign event name, got %d", registry.calls)
	}
	if len(repo.enqueued) != 0 {
		t.Fatalf("expected no enqueued job for a foreign event name")
	}
}

func TestIngestLeadWebhookRejectsMalformedJSON(t *testing.T) {
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	useCase := NewIngestLeadWebhookUseCase(registry, &fakeRelayJobRepository{}, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   []byte(`{"name": `),
		Signature: "anything",
	})
	if appErr == nil || appErr.Type != apperrors.TypeValidation {
		t.Fatalf("expected validation, got %+v", appErr)
	}
}

func TestIngestLeadWebhookChecksAuthenticityBeforeSchema(t *testing.T) {
	body := []byte(`{"name":"select.lead.created"}`)
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	useCase := NewIngestLeadWebhookUseCase(registry, &fakeRelayJobRepository{}, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: "deadbeef",
	})
	if appErr == nil || appErr.Type != apperrors.TypeUnauthenticated {
		t.Fatalf("expected unauthenticated before schema details leak, got %+v", appErr)
	}

	_, appErr = useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: policies.ComputeWebhookSignature(body, "s3cr3t"),
	})
	if appErr == nil || appErr.Type != apperrors.TypeUnprocessable {
		t.Fatalf("expected unprocessable for authenticated schema violation, got %+v", appErr)
	}
}

func TestIngestLeadWebhookMapsRegistryTransportFailure(t *testing.T) {
	registry := &fakeSigningKeyRegistry{
		err: apperrors.NewInternal("partner_registry_request_failed", "connection refused", nil),
	}
	useCase := NewIngestLeadWebhookUseCase(registry, &fakeRelayJobRepository{}, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   []byte(sampleLeadBody),
		Signature: "anything",
	})
	if appErr == nil || appErr.Type != apperrors.TypeUnavailable {
		t.Fatalf("expected unavailable for registry transport failure, got %+v", appErr)
	}
	if appErr.Code != "signing_key_resolution_failed" {
		t.Fatalf("expected signing_key_resolution_failed, got %s", appErr.Code)
	}
}

func TestIngestLeadWebhookMapsEnqueueFailure(t *testing.T) {
	body := []byte(sampleLeadBody)
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	repo := &fakeRelayJobRepository{
		enqueueErr: apperrors.NewInternal("relay_job_insert_failed", "connection reset", nil),
	}
	useCase := NewIngestLeadWebhookUseCase(registry, repo, fixedClock{})

	_, appErr := useCase.Execute(context.Background(), dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: policies.ComputeWebhookSignature(body, "s3cr3t"),
	})
	if appErr == nil || appErr.Type != apperrors.TypeUnavailable {
		t.Fatalf("expected unavailable for enqueue failure, got %+v", appErr)
	}
	if appErr.Code != "relay_job_enqueue_failed" {
		t.Fatalf("expected relay_job_enqueue_failed, got %s", appErr.Code)
	}
}

func TestIngestLeadWebhookIsRepeatable(t *testing.T) {
	body := []byte(sampleLeadBody)
	registry := &fakeSigningKeyRegistry{keys: map[int64]string{123: "s3cr3t"}}
	repo := &fakeRelayJobRepository{}
	useCase := NewIngestLeadWebhookUseCase(registry, repo, fixedClock{})

	command := dto.IngestLeadWebhookCommand{
		DealerID:  123,
		RawBody:   body,
		Signature: policies.ComputeWebhookSignature(body, "s3cr3t"),
	}

	first, firstErr := useCase.Execute(context.Background(), command)
	second, secondErr := useCase.Execute(context.Background(), command)
	if firstErr != nil || secondErr != nil {
		t.Fatalf("expected both calls to succeed, got %+v / %+v", firstErr, secondErr)
	}
	if first != second {
		t.Fatalf("expected identical outcomes, got %+v / %+v", first, second)
	}
	if len(repo.enqueued) != 2 {
		t.Fatalf("expected a job per delivery (at-least-once), got %d", len(repo.enqueued))
	}
}

type fixedClock struct{}

func (fixedClock) NowUTC() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

type fakeSigningKeyRegistry struct {
	keys  map[int64]string
	err   *apperrors.AppError
	calls int
}

func (f *fakeSigningKeyRegistry) ResolveSigningKey(_ context.Context, dealerID int64) (string, *apperrors.AppError) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	secret, exists := f.keys[dealerID]
	if !exists {
		return "", apperrors.NewNotFound(
			"partner_webhook_registration_not_found",
			"dealer has no webhook registration",
			map[string]any{"dealer_id": dealerID},
		)
	}
	return secret, nil
}

type fakeEnqueuedJob struct {
	dealerID int64
	leadID   string
}

type fakeRelayJobRepository struct {
	enqueued   []fakeEnqueuedJob
	enqueueErr *apperrors.AppError

	claimed  []dto.ClaimedRelayJob
	claimErr *apperrors.AppError

	advanced  []fakeAdvancedJob
	done      []int64
	retried   []fakeRetriedJob
	abandoned []fakeAbandonedJob
	renewals  int
}

type fakeAdvancedJob struct {
	id      int64
	payload []byte
}

type fakeRetriedJob struct {
	id            int64
	attempts      int
	nextAttemptAt time.Time
}

type fakeAbandonedJob struct {
	id       int64
	attempts int
}

func (f *fakeRelayJobRepository) EnqueueFetchLead(
	_ context.Context,
	dealerID int64,
	leadID string,
	_ time.Time,
) (int64, *apperrors.AppError) {
	if f.enqueueErr != nil {
		return 0, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, fakeEnqueuedJob{dealerID: dealerID, leadID: leadID})
	return int64(len(f.enqueued)), nil
}

func (f *fakeRelayJobRepository) ClaimDue(
	_ context.Context,
	_ time.Time,
	_ int,
	_ string,
	_ time.Time,
) ([]dto.ClaimedRelayJob, *apperrors.AppError) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	return f.claimed, nil
}

func (f *fakeRelayJobRepository) AdvanceToForward(
	_ context.Context,
	id int64,
	_ string,
	leadPayload []byte,
	_ time.Time,
) (bool, *apperrors.AppError) {
	f.advanced = append(f.advanced, fakeAdvancedJob{id: id, payload: leadPayload})
	return true, nil
}

func (f *fakeRelayJobRepository) MarkDone(
	_ context.Context,
	id int64,
	_ string,
	_ time.Time,
) (bool, *apperrors.AppError) {
	f.done = append(f.done, id)
	return true, nil
}

func (f *fakeRelayJobRepository) MarkRetry(
	_ context.Context,
	id int64,
	_ string,
	attempts int,
	nextAttemptAt time.Time,
	_ string,
	_ time.Time,
) (bool, *apperrors.AppError) {
	f.retried = append(f.retried, fakeRetriedJob{id: id, attempts: attempts, nextAttemptAt: nextAttemptAt})
	return true, nil
}

func (f *fakeRelayJobRepository) MarkAbandoned(
	_ context.Context,
	id int64,
	_ string,
	attempts int,
	_ string,
	_ time.Time,
) (bool, *apperrors.AppError) {
	f.abandoned = append(f.abandoned, fakeAbandonedJob{id: id, attempts: attempts})
	return true, nil
}

func (f *fakeRelayJobRepository) RenewLease(
	_ context.Context,
	_ int64,
	_ string,
	_ time.Time,
	_ time.Time,
) (bool, *apperrors.AppError) {
	f.renewals++
	return true, nil
}
