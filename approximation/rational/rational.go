// Package rational implements rational functions p(x)/(1 + x*q(x)) over
// arbitrary precision numbers and a Remez style equioscillation fitter that
// computes their minimax coefficients on an interval.
package rational

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils/bignum"
)

// Rational is the rational function
//
//	r(x) = (p0 + p1 x + ... + pn x^n) / (1 + q0 x + q1 x^2 + ... + q(m-1) x^m)
//
// Numerator stores p0, ..., pn and Denominator stores q0, ..., q(m-1): the constant
// term of the denominator is fixed to 1 and is not stored.
type Rational struct {
	Numerator   []*big.Float
	Denominator []*big.Float
}

// NewRational creates a new Rational from deep copies of the numerator and
// denominator coefficients, both in ascending degree.
func NewRational(numerator, denominator []*big.Float) *Rational {
	return &Rational{
		Numerator:   bignum.CopyVector(numerator),
		Denominator: bignum.CopyVector(denominator),
	}
}

// Degrees returns the degree n of the numerator and the degree m of the denominator.
func (r *Rational) Degrees() (n, m int) {
	return len(r.Numerator) - 1, len(r.Denominator)
}

// Clone returns a deep copy of r.
func (r *Rational) Clone() *Rational {
	return NewRational(r.Numerator, r.Denominator)
}

var floatComparer = cmp.Comparer(func(x, y *big.Float) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.Cmp(y) == 0
})

// Equal returns true if r and other have the same coefficients.
func (r *Rational) Equal(other *Rational) bool {
	return cmp.Equal(r.Numerator, other.Numerator, floatComparer) &&
		cmp.Equal(r.Denominator, other.Denominator, floatComparer)
}

// fullDenominator returns the denominator coefficients including the constant term.
func (r *Rational) fullDenominator(prec uint) (den []*big.Float) {
	den = make([]*big.Float, len(r.Denominator)+1)
	den[0] = bignum.NewFloat(1, prec)
	copy(den[1:], r.Denominator)
	return
}

// EvaluateDenominator returns 1 + x*q(x).
func (r *Rational) EvaluateDenominator(x *big.Float) (y *big.Float) {
	return bignum.MonomialEval(x, r.fullDenominator(x.Prec()))
}

// Evaluate returns r(x) with the precision of x. It returns ErrDivisionByZero
// if the denominator vanishes at x.
func (r *Rational) Evaluate(x *big.Float) (y *big.Float, err error) {

	den := r.EvaluateDenominator(x)

	if den.Sign() == 0 {
		return nil, xerrors.Errorf("cannot Evaluate: %w at x=%s", ErrDivisionByZero, x.Text('g', 10))
	}

	y = bignum.MonomialEval(x, r.Numerator)

	return y.Quo(y, den), nil
}

// Derivative returns r'(x) = (p'(x)D(x) - p(x)D'(x)) / D(x)^2 with D(x) = 1 + x*q(x).
// It returns ErrDivisionByZero if D vanishes at x.
func (r *Rational) Derivative(x *big.Float) (dy *big.Float, err error) {

	den := r.fullDenominator(x.Prec())

	d := bignum.MonomialEval(x, den)

	if d.Sign() == 0 {
		return nil, xerrors.Errorf("cannot Derivative: %w at x=%s", ErrDivisionByZero, x.Text('g', 10))
	}

	dd := bignum.MonomialDerivativeEval(x, den)
	p := bignum.MonomialEval(x, r.Numerator)
	dp := bignum.MonomialDerivativeEval(x, r.Numerator)

	dy = dp.Mul(dp, d)
	dy.Sub(dy, p.Mul(p, dd))
	dy.Quo(dy, d)
	dy.Quo(dy, d)

	return dy, nil
}

// String returns a human readable representation of r with 10 significant digits.
func (r *Rational) String() string {
	return r.Text(10)
}

// Text formats r with the given number of significant digits.
func (r *Rational) Text(digits int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p: [")
	for i, c := range r.Numerator {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Text('g', digits))
	}
	fmt.Fprintf(&sb, "], q: [1")
	for _, c := range r.Denominator {
		sb.WriteString(", ")
		sb.WriteString(c.Text('g', digits))
	}
	sb.WriteString("]")
	return sb.String()
}
