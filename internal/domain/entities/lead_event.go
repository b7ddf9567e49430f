package entities

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "leadrelay/internal/shared_kernel/errors"

	"github.com/google/uuid"
)

const LeadCreatedEventName = "select.lead.created"

// LeadPayload carries the partner-side identifier of the created lead. It
// is the only part of the event body that survives into the relay pipeline.
type LeadPayload struct {
	ID string
}

// LeadEvent is the typed form of a lead-created webhook body. Immutable
// once decoded; the raw wire bytes stay authoritative for signature checks.
type LeadEvent struct {
	Name       string
	UUID       uuid.UUID
	Payload    LeadPayload
	OccurredAt time.Time
}

type leadEventDocument struct {
	Name       *string              `json:"name"`
	UUID       *string              `json:"uuid"`
	Payload    *leadPayloadDocument `json:"payload"`
	OccurredAt *string              `json:"occurredAt"`
}

type leadPayloadDocument struct {
	ID *string `json:"id"`
}

// DecodeLeadEvent decodes raw webhook bytes into a LeadEvent. Unknown extra
// fields are ignored; missing or mistyped required fields are reported per
// field in the error details.
func DecodeLeadEvent(raw []byte) (LeadEvent, *apperrors.AppError) {
	document := leadEventDocument{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return LeadEvent{}, schemaError(map[string]any{decodeErrorField(err): "invalid type"})
	}

	fieldErrors := map[string]any{}

	if document.Name == nil || strings.TrimSpace(*document.Name) == "" {
		fieldErrors["name"] = "required"
	}

	eventUUID := uuid.UUID{}
	if document.UUID == nil || strings.TrimSpace(*document.UUID) == "" {
		fieldErrors["uuid"] = "required"
	} else {
		parsed, err := uuid.Parse(strings.TrimSpace(*document.UUID))
		if err != nil {
			fieldErrors["uuid"] = "must be a valid UUID"
		} else {
			eventUUID = parsed
		}
	}

	leadID := ""
	if document.Payload == nil {
		fieldErrors["payload"] = "required"
	} else if document.Payload.ID == nil || strings.TrimSpace(*document.Payload.ID) == "" {
		fieldErrors["payload.id"] = "required"
	} else {
		leadID = strings.TrimSpace(*document.Payload.ID)
	}

	occurredAt := time.Time{}
	if document.OccurredAt == nil || strings.TrimSpace(*document.OccurredAt) == "" {
		fieldErrors["occurredAt"] = "required"
	} else {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*document.OccurredAt))
		if err != nil {
			fieldErrors["occurredAt"] = "must be an RFC 3339 timestamp"
		} else {
			occurredAt = parsed
		}
	}

	if len(fieldErrors) > 0 {
		return LeadEvent{}, schemaError(fieldErrors)
	}

	return LeadEvent{
		Name:       strings.TrimSpace(*document.Name),
		UUID:       eventUUID,
		Payload:    LeadPayload{ID: leadID},
		OccurredAt: occurredAt,
	}, nil
}

func schemaError(fieldErrors map[string]any) *apperrors.AppError {
	return apperrors.NewUnprocessable(
		"lead_event_schema_invalid",
		"lead event body does not match the expected schema",
		map[string]any{"fields": fieldErrors},
	)
}

func decodeErrorField(err error) string {
	typeErr := &json.UnmarshalTypeError{}
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "body"
}
