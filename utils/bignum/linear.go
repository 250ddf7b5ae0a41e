package bignum

import (
	"math/big"

	"golang.org/x/xerrors"
)

// CopyVector returns a deep copy of v.
func CopyVector(v []*big.Float) (c []*big.Float) {
	c = make([]*big.Float, len(v))
	for i := range v {
		c[i] = new(big.Float).Set(v[i])
	}
	return
}

// CopyMatrix returns a deep copy of m.
func CopyMatrix(m [][]*big.Float) (c [][]*big.Float) {
	c = make([][]*big.Float, len(m))
	for i := range m {
		c[i] = CopyVector(m[i])
	}
	return
}

// SolveLinearSystem solves for x the system matrix * x = vector with Gauss-Jordan
// elimination and returns x. Neither matrix nor vector are modified.
//
// The pivot of step i is the diagonal entry matrix[i][i]: no pivot search is done,
// so the caller must build systems whose diagonal stays non-zero under elimination.
// A pivot that is exactly zero at the working precision returns ErrSingularSystem.
func SolveLinearSystem(matrix [][]*big.Float, vector []*big.Float) (x []*big.Float, err error) {

	n := len(matrix)

	if n == 0 || len(vector) != n {
		return nil, xerrors.Errorf("cannot SolveLinearSystem: %w: %d rows but %d right-hand side entries", ErrDimensionMismatch, n, len(vector))
	}

	for i := range matrix {
		if len(matrix[i]) != n {
			return nil, xerrors.Errorf("cannot SolveLinearSystem: %w: row %d has %d entries, expected %d", ErrDimensionMismatch, i, len(matrix[i]), n)
		}
	}

	m := CopyMatrix(matrix)
	x = CopyVector(vector)

	pivot := new(big.Float)
	c := new(big.Float)
	tmp := new(big.Float)

	for i := 0; i < n; i++ {

		if m[i][i].Sign() == 0 {
			return nil, xerrors.Errorf("cannot SolveLinearSystem: %w at row %d", ErrSingularSystem, i)
		}

		// Scales row i so that its pivot becomes 1
		pivot.Set(m[i][i])
		for k := i; k < n; k++ {
			m[i][k].Quo(m[i][k], pivot)
		}
		x[i].Quo(x[i], pivot)

		// Zeroes column i in every other row
		for j := 0; j < n; j++ {

			if j == i || m[j][i].Sign() == 0 {
				continue
			}

			c.Set(m[j][i])

			for k := i; k < n; k++ {
				m[j][k].Sub(m[j][k], tmp.Mul(m[i][k], c))
			}

			x[j].Sub(x[j], tmp.Mul(x[i], c))
		}
	}

	return x, nil
}
