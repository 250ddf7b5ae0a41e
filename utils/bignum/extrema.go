package bignum

import (
	"math/big"

	"golang.org/x/xerrors"
)

// FindExtremum returns a point of (a, b) where df vanishes, df being the derivative
// of the function whose extremum is searched. It bisects on the sign of df until
// the bracket is narrower than tol and returns its midpoint, or returns the
// midpoint as soon as df is exactly zero there.
//
// The signs of df(a) and df(b) must differ and neither can be zero, otherwise
// ErrNoSignChange is returned.
func FindExtremum(df func(x *big.Float) (y *big.Float), a, b, tol *big.Float) (mid *big.Float, err error) {

	sa := df(a).Sign()
	sb := df(b).Sign()

	if sa == sb || sa == 0 || sb == 0 {
		return nil, xerrors.Errorf("cannot FindExtremum: %w: sign(df(a))=%d, sign(df(b))=%d", ErrNoSignChange, sa, sb)
	}

	prec := a.Prec()
	if b.Prec() > prec {
		prec = b.Prec()
	}

	left := NewFloat(a, prec)
	right := NewFloat(b, prec)
	mid = new(big.Float).SetPrec(prec)
	width := new(big.Float).SetPrec(prec)

	half := func() {
		mid.Add(left, right)
		mid.SetMantExp(mid, -1)
	}

	half()

	for width.Abs(width.Sub(right, left)).Cmp(tol) > 0 {

		sm := df(mid).Sign()

		if sm == 0 {
			return mid, nil
		}

		if sm == sa {
			left.Set(mid)
		} else {
			right.Set(mid)
		}

		half()

		// The bracket cannot shrink further at this precision
		if mid.Cmp(left) == 0 || mid.Cmp(right) == 0 {
			break
		}
	}

	return mid, nil
}

// NumericalDerivative returns the central difference approximation of f'.
// The step is 2^(-prec/3) scaled to the magnitude of x, which balances truncation
// against rounding error at prec bits.
func NumericalDerivative(f func(x *big.Float) (y *big.Float), prec uint) func(x *big.Float) (y *big.Float) {
	return func(x *big.Float) (y *big.Float) {

		exp := 0
		if x.Sign() != 0 {
			if e := x.MantExp(nil); e > 0 {
				exp = e
			}
		}

		h := NewFloat(1, prec)
		h.SetMantExp(h, exp-int(prec/3))

		xh := NewFloat(x, prec)
		xh.Add(xh, h)
		y = NewFloat(f(xh), prec)

		xh.Sub(xh, h)
		xh.Sub(xh, h)
		y.Sub(y, f(xh))

		y.Quo(y, h)
		y.SetMantExp(y, -1)

		return
	}
}
