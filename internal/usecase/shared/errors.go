package shared

import (
	"context"
	"errors"

	"table-reservation/internal/infra"
	"table-reservation/internal/pkg/errs"
)

// TranslateErr marks store errors with the kind the callers above the use cases understand.
// Errors that already carry a kind pass through unchanged.
func TranslateErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errs.Is(err, errs.ErrInvalidInput),
		errs.Is(err, errs.ErrConflict),
		errs.Is(err, errs.ErrNotFound),
		errs.Is(err, errs.ErrStorageUnavailable):
		return err
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrNotFound)
	case infra.IsKind(err, infra.KindConflict):
		return errs.Mark(err, errs.ErrConflict)
	case infra.IsKind(err, infra.KindConstraint):
		return errs.Mark(err, errs.ErrInvalidInput)
	case infra.IsKind(err, infra.KindUnavailable),
		infra.IsKind(err, infra.KindDBFailure),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return err
}
