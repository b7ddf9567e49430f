package out

import (
	"context"

	apperrors "leadrelay/internal/shared_kernel/errors"
)

// SigningKeyRegistry resolves the current signing secret for a dealer from
// the partner platform's webhook-registration listing. Resolution happens
// fresh on every call; a key rotated on the partner side takes effect on
// the next request. A missing registration is a not_found error, distinct
// from transport or parse failures.
type SigningKeyRegistry interface {
	ResolveSigningKey(ctx context.Context, dealerID int64) (string, *apperrors.AppError)
}
