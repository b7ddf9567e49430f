package in

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type InitializePersistenceUseCase interface {
	Execute(ctx context.Context, command dto.InitializePersistenceCommand) *apperrors.AppError
}
