package use_cases

import (
	"context"
	"encoding/json"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
	portsout "leadrelay/internal/application/ports/out"
	"leadrelay/internal/domain/entities"
	"leadrelay/internal/domain/policies"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type ingestLeadWebhookUseCase struct {
	registry   portsout.SigningKeyRegistry
	repository portsout.RelayJobRepository
	clock      Clock
}

func NewIngestLeadWebhookUseCase(
	registry portsout.SigningKeyRegistry,
	repository portsout.RelayJobRepository,
	clock Clock,
) portsin.IngestLeadWebhookUseCase {
	return &ingestLeadWebhookUseCase{
		registry:   registry,
		repository: repository,
		clock:      clock,
	}
}

// Execute runs the ingress checks in a fixed order: JSON probe, event-name
// gate, signing-key resolution, signature verification over the exact wire
// bytes, strict decode, enqueue. The event-name gate runs before any remote
// lookup so a multiplexed endpoint can drop foreign event types cheaply;
// every other structural check waits until the sender is authenticated.
func (u *ingestLeadWebhookUseCase) Execute(
	ctx context.Context,
	command dto.IngestLeadWebhookCommand,
) (dto.IngestLeadWebhookOutput, *apperrors.AppError) {
	if u.registry == nil {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewInternal(
			"signing_key_registry_missing",
			"signing key registry is required",
			nil,
		)
	}
	if u.repository == nil {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewInternal(
			"relay_job_repository_missing",
			"relay job repository is required",
			nil,
		)
	}
	if command.DealerID <= 0 {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewValidation(
			"dealer_id_invalid",
			"dealer id must be a positive integer",
			map[string]any{"dealer_id": command.DealerID},
		)
	}

	probe := struct {
		Name string `json:"name"`
	}{}
	if err := json.Unmarshal(command.RawBody, &probe); err != nil {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewValidation(
			"webhook_body_invalid_json",
			"webhook body must be valid JSON",
			nil,
		)
	}

	if probe.Name != entities.LeadCreatedEventName {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewIgnored(
			"webhook_event_ignored",
			"webhook event name does not match the handled event type",
			map[string]any{"name": probe.Name},
		)
	}

	secret, resolveErr := u.registry.ResolveSigningKey(ctx, command.DealerID)
	if resolveErr != nil {
		if resolveErr.Type == apperrors.TypeNotFound {
			return dto.IngestLeadWebhookOutput{}, apperrors.NewNotFound(
				"dealer_signing_key_not_found",
				"no signing key is registered for this dealer",
				map[string]any{"dealer_id": command.DealerID},
			)
		}
		return dto.IngestLeadWebhookOutput{}, apperrors.NewUnavailable(
			"signing_key_resolution_failed",
			"signing key registry is unavailable",
			map[string]any{"dealer_id": command.DealerID, "cause": resolveErr.Code},
		)
	}

	if !policies.VerifyWebhookSignature(command.RawBody, command.Signature, secret) {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewUnauthenticated(
			"webhook_signature_invalid",
			"webhook signature does not match the dealer signing key",
			map[string]any{"dealer_id": command.DealerID},
		)
	}

	event, decodeErr := entities.DecodeLeadEvent(command.RawBody)
	if decodeErr != nil {
		return dto.IngestLeadWebhookOutput{}, decodeErr
	}

	now := u.clock.NowUTC()
	if _, enqueueErr := u.repository.EnqueueFetchLead(ctx, command.DealerID, event.Payload.ID, now); enqueueErr != nil {
		return dto.IngestLeadWebhookOutput{}, apperrors.NewUnavailable(
			"relay_job_enqueue_failed",
			"failed to enqueue the lead relay job",
			map[string]any{"lead_id": event.Payload.ID, "cause": enqueueErr.Code},
		)
	}

	return dto.IngestLeadWebhookOutput{
		LeadID:    event.Payload.ID,
		EventUUID: event.UUID.String(),
	}, nil
}
