package use_cases

import (
	"context"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
	valueobjects "leadrelay/internal/domain/value_objects"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type getHealthUseCase struct{}

func NewGetHealthUseCase() portsin.GetHealthUseCase {
	return &getHealthUseCase{}
}

func (u *getHealthUseCase) Execute(_ context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	status := valueobjects.NewHealthyStatus()

	return dto.HealthOutput{
		Status: status.String(),
	}, nil
}
