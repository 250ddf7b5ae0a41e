package bignum

import (
	"math"
	"math/big"
	"sync"
)

// erfScaleCache maps a precision to 2/sqrt(pi).
var erfScaleCache sync.Map

// erfScale returns 2/sqrt(pi) with prec bits of precision.
func erfScale(prec uint) *big.Float {
	if v, ok := erfScaleCache.Load(prec); ok {
		return v.(*big.Float)
	}
	v := NewFloat(2, prec)
	v.Quo(v, Sqrt(Pi(prec)))
	erfScaleCache.Store(prec, v)
	return v
}

// Erf returns the error function erf(x) with the precision of x.
//
// It evaluates erf(x) = 2/sqrt(pi) * exp(-x^2) * sum_{k>=0} 2^k x^(2k+1) / (1*3*...*(2k+1)),
// a series of terms of constant sign, so no cancellation occurs and only a fixed
// number of guard bits is needed. Once erfc(|x|) falls below 2^-(prec+1) the result
// is rounded to +/-1.
func Erf(x *big.Float) (y *big.Float) {

	prec := x.Prec()

	if x.Sign() == 0 {
		return new(big.Float).SetPrec(prec)
	}

	// erfc(t) < exp(-t^2) for t >= 1
	x2 := new(big.Float).Mul(x, x)
	if limit := float64(prec+1) * math.Ln2; limit >= 1 {
		if f, _ := x2.Float64(); f > limit {
			return NewFloat(x.Sign(), prec)
		}
	}

	work := prec + 32

	xw := NewFloat(x, work)
	x2w := new(big.Float).SetPrec(work).Mul(xw, xw)
	twoX2 := new(big.Float).SetPrec(work).Add(x2w, x2w)

	term := new(big.Float).SetPrec(work).Set(xw)
	sum := new(big.Float).SetPrec(work).Set(xw)
	den := new(big.Float).SetPrec(work)

	for k := 1; ; k++ {
		term.Mul(term, twoX2)
		term.Quo(term, den.SetInt64(int64(2*k+1)))
		sum.Add(sum, term)

		// terms decrease once 2k+1 > 2x^2; stop when the term no longer moves the sum
		if term.MantExp(nil) < sum.MantExp(nil)-int(work) && den.Cmp(twoX2) > 0 {
			break
		}
	}

	e := new(big.Float).Neg(x2w)
	e = Exp(e)

	sum.Mul(sum, e)
	sum.Mul(sum, erfScale(work))

	return new(big.Float).SetPrec(prec).Set(sum)
}

// ErfDerivative returns d/dx erf(x) = 2/sqrt(pi) * exp(-x^2) with the precision of x.
func ErfDerivative(x *big.Float) (y *big.Float) {
	prec := x.Prec()
	y = new(big.Float).SetPrec(prec).Mul(x, x)
	y.Neg(y)
	y = Exp(y)
	y.Mul(y, erfScale(prec))
	return
}

// ErfInv returns the inverse error function erfinv(x) for x in (-1, 1) with the
// precision of x. It panics if |x| >= 1.
//
// A float64 estimate is refined by Newton iterations on erf(y) - x carried out with
// 64 guard bits, which absorbs the cancellation of erf(y) - x close to +/-1.
func ErfInv(x *big.Float) (y *big.Float) {

	prec := x.Prec()

	if x.Sign() == 0 {
		return new(big.Float).SetPrec(prec)
	}

	one := NewFloat(1, prec)

	if new(big.Float).Abs(x).Cmp(one) >= 0 {
		panic("cannot ErfInv: |x| >= 1")
	}

	if x.Sign() < 0 {
		y = ErfInv(new(big.Float).Neg(x))
		return y.Neg(y)
	}

	work := prec + 64

	xw := NewFloat(x, work)

	// float64 starting point: erfinv(x) = erfcinv(1-x) keeps the tail representable
	var y0 float64
	if xf, _ := xw.Float64(); xf < 0.5 {
		y0 = math.Erfinv(xf)
	} else {
		c := new(big.Float).Sub(NewFloat(1, work), xw)
		cf, _ := c.Float64()
		if y0 = math.Erfcinv(cf); math.IsInf(y0, 0) {
			// 1-x underflows float64: erfc(y) ~ exp(-y^2)
			y0 = math.Sqrt(-float64(c.MantExp(nil)) * math.Ln2)
		}
	}

	y = NewFloat(y0, work)

	dy := new(big.Float).SetPrec(work)

	for i := 0; i < 64; i++ {

		dy.Sub(Erf(y), xw)

		if dy.Sign() == 0 {
			break
		}

		dy.Quo(dy, ErfDerivative(y))
		y.Sub(y, dy)

		if dy.MantExp(nil) < y.MantExp(nil)-int(prec)-2 {
			break
		}
	}

	return new(big.Float).SetPrec(prec).Set(y)
}
