package out

import (
	"context"

	"leadrelay/internal/application/dto"
	apperrors "leadrelay/internal/shared_kernel/errors"
)

type LeadForwardGateway interface {
	ForwardLead(ctx context.Context, input dto.ForwardLeadInput) (dto.ForwardLeadOutput, *apperrors.AppError)
}
