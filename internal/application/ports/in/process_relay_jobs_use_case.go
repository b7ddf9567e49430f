package in

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type ProcessRelayJobsUseCase interface {
	Execute(
		ctx context.Context,
		command dto.ProcessRelayJobsCommand,
	) (dto.ProcessRelayJobsOutput, *apperrors.AppError)
}
