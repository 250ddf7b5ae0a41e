package bignum

import (
	"math/big"
)

// MonomialEval evaluates y = sum x^i * poly[i] with Horner's method.
// The result carries the precision of x. An empty poly evaluates to zero.
func MonomialEval(x *big.Float, poly []*big.Float) (y *big.Float) {
	y = new(big.Float).SetPrec(x.Prec())
	for i := len(poly) - 1; i >= 0; i-- {
		y.Mul(y, x)
		y.Add(y, poly[i])
	}
	return
}

// MonomialDerivativeEval evaluates y = sum i * x^(i-1) * poly[i].
func MonomialDerivativeEval(x *big.Float, poly []*big.Float) (y *big.Float) {
	y = new(big.Float).SetPrec(x.Prec())
	tmp := new(big.Float).SetPrec(x.Prec())
	for i := len(poly) - 1; i >= 1; i-- {
		y.Mul(y, x)
		y.Add(y, tmp.Mul(poly[i], tmp.SetInt64(int64(i))))
	}
	return
}
