package out

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type LeadFetchGateway interface {
	FetchLead(ctx context.Context, input dto.FetchLeadInput) (dto.FetchLeadOutput, *apperrors.AppError)
}
