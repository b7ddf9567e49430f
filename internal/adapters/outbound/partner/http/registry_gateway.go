package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	portsout "leadrelay/internal/application/ports/out"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBodyBytes  = 1024

	webhookRegistryPath = "/partners-api/webhooks"
	registryStatusOK    = "success"
)

type Config struct {
	BaseURL    string
	Credential string
	Timeout    time.Duration
}

// RegistryGateway resolves dealer signing secrets from the partner
// platform's webhook-registration listing. Every call hits the partner API;
// nothing is cached, so key rotation takes effect on the next request.
type RegistryGateway struct {
	baseURL    string
	credential string
	client     *nethttp.Client
}

var _ portsout.SigningKeyRegistry = (*RegistryGateway)(nil)

func NewRegistryGateway(cfg Config) *RegistryGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &RegistryGateway{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		credential: strings.TrimSpace(cfg.Credential),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

type webhookRegistrationDocument struct {
	DealerID  int64  `json:"dealerId"`
	SignToken string `json:"signToken"`
}

type webhookRegistryDocument struct {
	Status string `json:"status"`
	Data   struct {
		Webhooks []webhookRegistrationDocument `json:"webhooks"`
	} `json:"data"`
}

func (g *RegistryGateway) ResolveSigningKey(ctx context.Context, dealerID int64) (string, *apperrors.AppError) {
	if g == nil || g.client == nil {
		return "", apperrors.NewInternal(
			"partner_registry_not_configured",
			"partner registry gateway is not configured",
			nil,
		)
	}
	if g.baseURL == "" {
		return "", apperrors.NewInternal(
			"partner_registry_base_url_missing",
			"partner API base URL is missing",
			nil,
		)
	}

	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, g.baseURL+webhookRegistryPath, nil)
	if err != nil {
		return "", apperrors.NewInternal(
			"partner_registry_request_build_failed",
			"failed to build partner registry request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	if g.credential != "" {
		request.Header.Set("Authorization", "Basic "+g.credential)
	}

	response, err := g.client.Do(request)
	if err != nil {
		return "", apperrors.NewInternal(
			"partner_registry_request_failed",
			"failed to reach the partner webhook registry",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode != nethttp.StatusOK {
		return "", apperrors.NewInternal(
			"partner_registry_request_failed",
			"partner webhook registry returned non-200 status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        readErrorBodyPreview(response.Body),
			},
		)
	}

	document := webhookRegistryDocument{}
	if err := json.NewDecoder(response.Body).Decode(&document); err != nil {
		return "", apperrors.NewInternal(
			"partner_registry_response_invalid",
			"failed to parse partner webhook registry response",
			map[string]any{"error": err.Error()},
		)
	}
	if document.Status != registryStatusOK {
		return "", apperrors.NewInternal(
			"partner_registry_status_unexpected",
			"partner webhook registry reported a non-success status",
			map[string]any{"status": document.Status},
		)
	}

	for _, registration := range document.Data.Webhooks {
		if registration.DealerID == dealerID {
			secret := strings.TrimSpace(registration.SignToken)
			if secret == "" {
				return "", apperrors.NewInternal(
					"partner_registry_sign_token_empty",
					"partner webhook registration carries an empty sign token",
					map[string]any{"dealer_id": dealerID},
				)
			}
			return secret, nil
		}
	}

	return "", apperrors.NewNotFound(
		"partner_webhook_registration_not_found",
		"dealer has no webhook registration",
		map[string]any{"dealer_id": dealerID},
	)
}

func readErrorBodyPreview(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
