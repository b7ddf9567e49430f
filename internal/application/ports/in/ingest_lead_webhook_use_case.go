package in

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type IngestLeadWebhookUseCase interface {
	Execute(
		ctx context.Context,
		command dto.IngestLeadWebhookCommand,
	) (dto.IngestLeadWebhookOutput, *apperrors.AppError)
}
