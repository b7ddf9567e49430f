package in

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}
