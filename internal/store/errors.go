// internal/store/errors.go
package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "lending-workers/internal/common/errors"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrApplicationFinalized = errors.New("application is finalized")
	ErrDuplicateApplication = errors.New("application already exists")
	ErrPreferenceNotFound   = errors.New("preference not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrBidNotPending        = errors.New("bid is not pending")
	ErrBidCompleted         = errors.New("bid is already fully funded")
	ErrBidOverFunded        = errors.New("payment exceeds outstanding amount")
)

// ToStandardError maps store errors onto worker error codes. id names the
// entity the caller asked for.
func ToStandardError(err error, id string) *apperrors.StandardError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrApplicationNotFound):
		return apperrors.NewApplicationNotFoundError(id)
	case errors.Is(err, ErrApplicationFinalized):
		return apperrors.NewApplicationFinalizedError(id)
	case errors.Is(err, ErrDuplicateApplication):
		return apperrors.NewDuplicateApplicationError(id)
	case errors.Is(err, ErrPreferenceNotFound):
		return apperrors.NewPreferenceNotFoundError(id)
	case errors.Is(err, ErrBidNotFound):
		return apperrors.NewBidNotFoundError(id)
	case errors.Is(err, ErrBidNotPending), errors.Is(err, ErrBidCompleted):
		return apperrors.NewBidAlreadyFinalizedError(id)
	case errors.Is(err, ErrBidOverFunded):
		return apperrors.NewBidValidationFailedError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError("store")
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	return apperrors.NewQueryExecutionFailedError("store", err)
}

func notFound(sentinel error, id string) error {
	return fmt.Errorf("%w: %s", sentinel, id)
}
