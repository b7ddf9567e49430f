package in

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type GetOpenAPISpecUseCase interface {
	Execute(ctx context.Context, query dto.GetOpenAPISpecQuery) (dto.OpenAPISpecOutput, *apperrors.AppError)
}
