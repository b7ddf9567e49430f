package controllers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

// signatureHeader carries the hex digest computed by the partner platform
// over the exact request body bytes.
const signatureHeader = "X-Sign"

const maxWebhookBodyBytes = 1 << 20

type leadWebhookResponse struct {
	Status string `json:"status"`
	LeadID string `json:"lead_id"`
}

type LeadWebhookController struct {
	useCase portsin.IngestLeadWebhookUseCase
	logger  *log.Logger
}

func NewLeadWebhookController(useCase portsin.IngestLeadWebhookUseCase, logger *log.Logger) *LeadWebhookController {
	return &LeadWebhookController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *LeadWebhookController) IngestLeadCreated(w http.ResponseWriter, r *http.Request) {
	if c.useCase == nil {
		writeAppError(w, apperrors.NewInternal(
			"lead_webhook_use_case_missing",
			"lead webhook use case is required",
			nil,
		))
		return
	}

	dealerID, appErr := parseDealerID(r.PathValue("dealerId"))
	if appErr != nil {
		c.logRequestError(r.Method, appErr)
		writeAppError(w, appErr)
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		appErr := apperrors.NewValidation(
			"webhook_body_read_failed",
			"failed to read request body",
			map[string]any{"error": err.Error()},
		)
		c.logRequestError(r.Method, appErr)
		writeAppError(w, appErr)
		return
	}

	output, appErr := c.useCase.Execute(r.Context(), dto.IngestLeadWebhookCommand{
		DealerID:  dealerID,
		RawBody:   rawBody,
		Signature: strings.TrimSpace(r.Header.Get(signatureHeader)),
	})
	if appErr != nil {
		c.logRequestError(r.Method, appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusCreated, leadWebhookResponse{
		Status: "queued",
		LeadID: output.LeadID,
	})
}

func parseDealerID(raw string) (int64, *apperrors.AppError) {
	dealerID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || dealerID <= 0 {
		return 0, apperrors.NewValidation(
			"dealer_id_invalid",
			"dealer id must be a positive integer",
			map[string]any{"dealer_id": raw},
		)
	}
	return dealerID, nil
}

func (c *LeadWebhookController) logRequestError(method string, appErr *apperrors.AppError) {
	if c == nil || c.logger == nil || appErr == nil {
		return
	}
	c.logger.Printf("request error path=/webhook/lead-created/{dealerId} method=%s code=%s message=%s", method, appErr.Code, appErr.Message)
}
