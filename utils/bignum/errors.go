package bignum

import (
	"errors"
)

var (
	// ErrSingularSystem is returned when a pivot of the linear system is exactly zero.
	ErrSingularSystem = errors.New("bignum: singular pivot")

	// ErrDimensionMismatch is returned when the matrix is not square or when the
	// right-hand side does not match its dimension.
	ErrDimensionMismatch = errors.New("bignum: dimension mismatch")

	// ErrNoSignChange is returned by FindExtremum when the derivative does not
	// change sign over the bracket, or vanishes at one of its ends.
	ErrNoSignChange = errors.New("bignum: derivative does not change sign")
)
