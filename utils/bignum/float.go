// Package bignum implements arbitrary precision arithmetic on top of [big.Float]:
// transcendental functions, polynomial evaluation, the Gauss-Jordan linear solver
// and the bisection extrema locator used by the approximation packages.
package bignum

import (
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/ALTree/bigfloat"
	"golang.org/x/xerrors"
)

const pi = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679821480865132823066470938446095505822317253594081284811174502841027019385211055596446229489549303819644288109756659334461284756482337867831652712019091456485669234603486104543266482133936072602491412737245870066063155881748815209209628292540917153643678925903600113305305488204665213841469519415116094330572703657595919530921861173819326117931051185480744623799627495673518857527248912279381830119491298336733624406566430860213949463952247371907021798609437027705392171762931767523846748184676694051320005681271452635608277857713427577896091736371787214684409012249534301465495853710507922796892589235420199561121290219608640344181598136297747713099605187072113499999983729780499510597317328160963185950244594553469083026425223082533446850352619311881710100031378387528865875332083814206171776691473035982534904287554687311595628638823537875937519577818577805321712268066130019278766111959092164201989"

// GuardBits is the number of bits added on top of the requested decimal precision.
const GuardBits = 8

// DigitsToPrec returns the bit precision needed to carry digits significant decimal digits.
func DigitsToPrec(digits int) uint {
	if digits < 1 {
		digits = 1
	}
	return uint(math.Ceil(float64(digits)*math.Log2(10))) + GuardBits
}

// PrecToDigits returns the number of significant decimal digits carried by prec bits.
func PrecToDigits(prec uint) int {
	if prec <= GuardBits {
		return 1
	}
	return int(float64(prec-GuardBits) / math.Log2(10))
}

// piCache maps a precision to the parsed value of Pi.
var piCache sync.Map

// Pi returns Pi with prec bits of precision.
func Pi(prec uint) *big.Float {
	if v, ok := piCache.Load(prec); ok {
		return new(big.Float).Set(v.(*big.Float))
	}
	v, _ := new(big.Float).SetPrec(prec).SetString(pi)
	piCache.Store(prec, v)
	return new(big.Float).Set(v)
}

// NewFloat creates a new big.Float element with "prec" bits of precision.
// Valide types for x are: int, int64, uint, uint64, float64, *big.Int or *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float)
	y.SetPrec(prec) // decimal precision

	if x == nil {
		return
	}

	switch x := x.(type) {
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case float64:
		y.SetFloat64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Errorf("invalid x.(type): valide types are int, int64, uint, uint64, float64, *big.Int or *big.Float but is %T", x))
	}

	return
}

// ParseFloat parses a decimal string into a big.Float with prec bits of precision.
func ParseFloat(s string, prec uint) (*big.Float, error) {
	y, ok := new(big.Float).SetPrec(prec).SetString(s)
	if !ok {
		return nil, xerrors.Errorf("cannot ParseFloat: invalid decimal %q", s)
	}
	return y, nil
}

// Text formats x in decimal with the given number of significant digits.
// A nil x is formatted as the empty string.
func Text(x *big.Float, digits int) string {
	if x == nil {
		return ""
	}
	return x.Text('g', digits)
}

// Abs returns |x|.
func Abs(x *big.Float) *big.Float {
	return new(big.Float).Abs(x)
}

// Sqrt returns sqrt(x) with the precision of x.
func Sqrt(x *big.Float) *big.Float {
	return new(big.Float).SetPrec(x.Prec()).Sqrt(x)
}

// Log return ln(x) with 2^precisions bits.
func Log(x *big.Float) (ln *big.Float) {
	return bigfloat.Log(x)
}

// Exp returns exp(x) with 2^precisions bits.
func Exp(x *big.Float) (exp *big.Float) {
	return bigfloat.Exp(x)
}

// Pow returns x^y
func Pow(x, y *big.Float) (pow *big.Float) {
	return bigfloat.Pow(x, y)
}

// TanH returns hyperbolic tan(x) with 2^precisions bits.
func TanH(x *big.Float) (tanh *big.Float) {
	tanh = new(big.Float).Set(x)
	tanh.Add(tanh, tanh)
	tanh = Exp(tanh)
	tmp := new(big.Float).Set(tanh)
	tmp.Add(tmp, NewFloat(1, x.Prec()))
	tanh.Sub(tanh, NewFloat(1, x.Prec()))
	tanh.Quo(tanh, tmp)
	return
}

// Sigmoid returns 1/(1+exp(-x)).
func Sigmoid(x *big.Float) (y *big.Float) {
	z := new(big.Float).Neg(x)
	z = Exp(z)
	z.Add(z, NewFloat(1, x.Prec()))
	y = NewFloat(1, x.Prec())
	y.Quo(y, z)
	return
}

// IsFinite returns true if x is neither +Inf nor -Inf.
func IsFinite(x *big.Float) bool {
	return !x.IsInf()
}
