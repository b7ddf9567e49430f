package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"leadrelay/internal/application/dto"
	portsout "leadrelay/internal/application/ports/out"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

const selectLeadPathPrefix = "/partners-api/select/leads/"

// LeadGateway fetches full lead records from the partner API on behalf of
// the relay pipeline's fetch stage.
type LeadGateway struct {
	baseURL    string
	credential string
	client     *nethttp.Client
}

var _ portsout.LeadFetchGateway = (*LeadGateway)(nil)

func NewLeadGateway(cfg Config) *LeadGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &LeadGateway{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		credential: strings.TrimSpace(cfg.Credential),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

func (g *LeadGateway) FetchLead(ctx context.Context, input dto.FetchLeadInput) (dto.FetchLeadOutput, *apperrors.AppError) {
	if g == nil || g.client == nil {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_gateway_not_configured",
			"partner lead gateway is not configured",
			nil,
		)
	}
	leadID := strings.TrimSpace(input.LeadID)
	if leadID == "" {
		return dto.FetchLeadOutput{}, apperrors.NewValidation(
			"partner_lead_id_missing",
			"lead id is required",
			nil,
		)
	}
	if input.DealerID <= 0 {
		return dto.FetchLeadOutput{}, apperrors.NewValidation(
			"partner_dealer_id_invalid",
			"dealer id must be a positive integer",
			map[string]any{"dealer_id": input.DealerID},
		)
	}

	requestURL := g.baseURL + selectLeadPathPrefix + url.PathEscape(leadID) +
		"?dealer_id=" + strconv.FormatInt(input.DealerID, 10)
	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, requestURL, nil)
	if err != nil {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_request_build_failed",
			"failed to build partner lead request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	if g.credential != "" {
		request.Header.Set("Authorization", "Basic "+g.credential)
	}

	response, err := g.client.Do(request)
	if err != nil {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_request_failed",
			"failed to reach the partner lead API",
			map[string]any{"lead_id": leadID, "error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode != nethttp.StatusOK {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_request_failed",
			"partner lead API returned non-200 status",
			map[string]any{
				"lead_id":     leadID,
				"status_code": response.StatusCode,
				"body":        readErrorBodyPreview(response.Body),
			},
		)
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_response_read_failed",
			"failed to read partner lead response",
			map[string]any{"lead_id": leadID, "error": err.Error()},
		)
	}
	if !json.Valid(payload) {
		return dto.FetchLeadOutput{}, apperrors.NewInternal(
			"partner_lead_response_invalid",
			"partner lead response is not valid JSON",
			map[string]any{"lead_id": leadID},
		)
	}

	return dto.FetchLeadOutput{Payload: payload}, nil
}
