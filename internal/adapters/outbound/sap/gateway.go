package sap

import (
	"context"
	"log"
	"strings"

	"leadrelay/internal/application/dto"
	portsout "leadrelay/internal/application/ports/out"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

// Gateway is the downstream forward adapter. The SAP contract is not
// finalized; ForwardLead validates its input and then fails with a code
// that is never produced by transport errors, so callers and operators can
// tell "not built yet" apart from "SAP is down".
type Gateway struct {
	baseURL string
	logger  *log.Logger
}

var _ portsout.LeadForwardGateway = (*Gateway)(nil)

func NewGateway(baseURL string, logger *log.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  logger,
	}
}

func (g *Gateway) ForwardLead(_ context.Context, input dto.ForwardLeadInput) (dto.ForwardLeadOutput, *apperrors.AppError) {
	if g == nil {
		return dto.ForwardLeadOutput{}, apperrors.NewInternal(
			"sap_gateway_not_configured",
			"sap gateway is not configured",
			nil,
		)
	}
	if len(input.Payload) == 0 {
		return dto.ForwardLeadOutput{}, apperrors.NewValidation(
			"sap_forward_payload_missing",
			"lead payload is required",
			map[string]any{"lead_id": input.LeadID},
		)
	}

	if g.logger != nil {
		g.logger.Printf("sap forward requested lead_id=%s dealer_id=%d payload_bytes=%d", input.LeadID, input.DealerID, len(input.Payload))
	}

	return dto.ForwardLeadOutput{}, apperrors.NewInternal(
		"sap_forward_not_implemented",
		"sap lead forwarding is not implemented",
		map[string]any{"lead_id": input.LeadID},
	)
}
