package txcoord

import (
	"context"
	"errors"

	"parking/internal/pkg/errs"
)

// Kind is the failure classification that decides retry and presentation.
type Kind int

const (
	KindNone Kind = iota
	KindBusiness
	KindValidation
	KindTransient
	KindTimeout
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBusiness:
		return "business"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	default:
		return "fatal"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Retryable reports whether a unit failing with this kind may be attempted again.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// Classify maps an error to its Kind. Savepoint misuse and caller
// cancellation are fatal even when they wrap a transient cause, and anything
// unrecognised is fatal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, errs.ErrSavepoint):
		return KindFatal
	case errors.Is(err, errs.ErrDeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindFatal
	case errors.Is(err, errs.ErrBusinessRule), errors.Is(err, errs.ErrObjectNotFound):
		return KindBusiness
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return KindValidation
	case errors.Is(err, errs.ErrTransient):
		return KindTransient
	default:
		return KindFatal
	}
}
