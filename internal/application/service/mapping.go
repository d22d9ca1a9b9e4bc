// Package service orchestrates the license lifecycle and authentication use
// cases on top of the domain ports.
package service

import (
	"errors"

	"github.com/embedpro/pids-licensing/internal/domain/repository"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

// mapStoreErr translates repository sentinels into the error taxonomy. This
// is the only place store failures meet HTTP semantics.
func mapStoreErr(err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.ErrConflict("Licence already exists").WithError(err)
	case errors.Is(err, repository.ErrRecordMissing):
		return apperrors.ErrNotFound(notFoundMessage).WithError(err)
	case errors.Is(err, repository.ErrStoreThrottled):
		return apperrors.ErrThrottled("Store is busy. Retry shortly.").WithError(err)
	case errors.Is(err, repository.ErrStoreUnavailable):
		return apperrors.ErrUnavailable("Store unavailable. Try again later.").WithError(err)
	default:
		return apperrors.ErrInternal("Server error. Try again later.").WithError(err)
	}
}
