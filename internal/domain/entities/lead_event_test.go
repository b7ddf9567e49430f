//go:build !integration

package entities

import (
	"testing"

	apperrors "leadrelay/internal/shared_kernel/errors"
)

func TestDecodeLeadEventAcceptsValidBody(t *testing.T) {
	raw := []byte(`{
		"name": "select.lead.created",
		"uuid": "bc65cf8a-6a3e-11ed-a1eb-0242ac120002",
		"payload": {"id": "32656d0b-2268-4189-b6c1-19e647cb84ae"},
		"occurredAt": "2022-11-23T00:30:00.000Z"
	}`)

	event, appErr := DecodeLeadEvent(raw)
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if event.Name != LeadCreatedEventName {
		t.Fatalf("expected event name %s, got %s", LeadCreatedEventName, event.Name)
	}
	if event.Payload.ID != "32656d0b-2268-4189-b6c1-19e647cb84ae" {
		t.Fatalf("expected lead id, got %s", event.Payload.ID)
	}
	if event.UUID.String() != "bc65cf8a-6a3e-11ed-a1eb-0242ac120002" {
		t.Fatalf("expected event uuid, got %s", event.UUID)
	}
	if event.OccurredAt.IsZero() {
		t.Fatalf("expected parsed occurredAt")
	}
}

func TestDecodeLeadEventIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"name": "select.lead.created",
		"uuid": "bc65cf8a-6a3e-11ed-a1eb-0242ac120002",
		"payload": {"id": "lead-1", "source": "avito"},
		"occurredAt": "2022-11-23T00:30:00Z",
		"extra": {"nested": true}
	}`)

	if _, appErr := DecodeLeadEvent(raw); appErr != nil {
		t.Fatalf("expected unknown fields to be ignored, got %+v", appErr)
	}
}

func TestDecodeLeadEventReportsMissingFields(t *testing.T) {
	event, appErr := DecodeLeadEvent([]byte(`{"name":"select.lead.created"}`))
	if appErr == nil {
		t.Fatalf("expected schema error, got %+v", event)
	}
	if appErr.Type != apperrors.TypeUnprocessable {
		t.Fatalf("expected unprocessable, got %s", appErr.Type)
	}

	fields, ok := appErr.Details["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected field details, got %+v", appErr.Details)
	}
	for _, field := range []string{"uuid", "payload", "occurredAt"} {
		if _, present := fields[field]; !present {
			t.Fatalf("expected error for field %s, got %+v", field, fields)
		}
	}
}

func TestDecodeLeadEventRejectsMistypedFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "uuid not parseable", raw: `{"name":"n","uuid":"not-a-uuid","payload":{"id":"x"},"occurredAt":"2022-11-23T00:30:00Z"}`},
		{name: "occurredAt not a timestamp", raw: `{"name":"n","uuid":"bc65cf8a-6a3e-11ed-a1eb-0242ac120002","payload":{"id":"x"},"occurredAt":"yesterday"}`},
		{name: "payload wrong type", raw: `{"name":"n","uuid":"bc65cf8a-6a3e-11ed-a1eb-0242ac120002","payload":"x","occurredAt":"2022-11-23T00:30:00Z"}`},
		{name: "name wrong type", raw: `{"name":7,"uuid":"bc65cf8a-6a3e-11ed-a1eb-0242ac120002","payload":{"id":"x"},"occurredAt":"2022-11-23T00:30:00Z"}`},
		{name: "empty lead id", raw: `{"name":"n","uuid":"bc65cf8a-6a3e-11ed-a1eb-0242ac120002","payload":{"id":""},"occurredAt":"2022-11-23T00:30:00Z"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, appErr := DecodeLeadEvent([]byte(tc.raw))
			if appErr == nil {
				t.Fatalf("expected schema error")
			}
			if appErr.Code != "lead_event_schema_invalid" {
				t.Fatalf("expected lead_event_schema_invalid, got %s", appErr.Code)
			}
		})
	}
}
