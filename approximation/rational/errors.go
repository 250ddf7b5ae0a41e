package rational

import (
	"errors"

	"github.com/ratfit/ratfit/utils/bignum"
)

var (
	// ErrDivisionByZero is returned when the denominator of a rational function
	// evaluates to zero, or changes sign over the fitted interval.
	ErrDivisionByZero = errors.New("rational: division by zero")

	// ErrInsufficientExtrema is returned when fewer than n+m+2 sign-alternating
	// extrema of the approximation error can be located.
	ErrInsufficientExtrema = errors.New("rational: insufficient alternating extrema")

	// ErrNonConvergence is returned when the guessed-error iteration does not meet
	// the tolerance within the maximum number of rounds, or diverges.
	ErrNonConvergence = errors.New("rational: guessed error did not converge")

	// ErrInvalidInterval is returned when start >= end.
	ErrInvalidInterval = errors.New("rational: invalid interval")

	// ErrInvalidParameters is returned for negative degrees, a missing function or a
	// non-positive tolerance.
	ErrInvalidParameters = errors.New("rational: invalid parameters")
)

// IsFitFailure reports whether err is one of the errors a Fitter returns when no
// valid equioscillating fit exists for the given interval and degrees.
func IsFitFailure(err error) bool {
	return errors.Is(err, ErrInsufficientExtrema) ||
		errors.Is(err, ErrNonConvergence) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, bignum.ErrSingularSystem)
}
