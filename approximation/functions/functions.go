// Package functions is the registry of named target functions that can be fitted,
// each with its analytic derivative and a default domain.
package functions

import (
	"errors"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils"
	"github.com/ratfit/ratfit/utils/bignum"
)

// ErrUnknownFunction is returned by Lookup for a name that is not registered.
var ErrUnknownFunction = errors.New("functions: unknown function")

// TailProbability is 1 - erf(x) at the default end of the erf and phi domains.
const TailProbability = "1e-18"

// Target is a real function to approximate.
type Target struct {
	Name string

	// F is the function.
	F func(x *big.Float) (y *big.Float)

	// Df is the derivative of F. It can be nil, in which case a numerical
	// derivative is used.
	Df func(x *big.Float) (y *big.Float)

	// Start and End are the default domain.
	Start, End *big.Float
}

type constructor func(a bignum.Arithmetic) Target

var registry = map[string]constructor{
	"phi":     phi,
	"erf":     erf,
	"exp":     exp,
	"sigmoid": sigmoid,
	"tanh":    tanh,
	"log1p":   log1p,
}

// Names returns the sorted names of the registered functions.
func Names() []string {
	return utils.GetSortedKeys(registry)
}

// Lookup returns the target registered under name, evaluated with the arithmetic a.
func Lookup(name string, a bignum.Arithmetic) (t Target, err error) {
	c, ok := registry[name]
	if !ok {
		return t, xerrors.Errorf("cannot Lookup %q: %w (available: %v)", name, ErrUnknownFunction, Names())
	}
	return c(a), nil
}

// TailEnd returns erfinv(1 - TailProbability), the point beyond which erf is 1
// to within 1e-18.
func TailEnd(a bignum.Arithmetic) *big.Float {
	tail, err := a.Parse(TailProbability)
	if err != nil {
		panic(err)
	}
	x := a.NewFloat(1)
	return a.ErfInv(x.Sub(x, tail))
}

// phi is erf(x/sqrt(2)), the probability that a standard normal variable lies in [-x, x].
func phi(a bignum.Arithmetic) Target {

	sqrt2 := a.Sqrt(a.NewFloat(2))

	// sqrt(2/pi)
	scale := a.NewFloat(2)
	scale.Quo(scale, bignum.Pi(a.Prec()))
	scale = a.Sqrt(scale)

	return Target{
		Name: "phi",
		F: func(x *big.Float) (y *big.Float) {
			y = a.NewFloat(x)
			return a.Erf(y.Quo(y, sqrt2))
		},
		Df: func(x *big.Float) (y *big.Float) {
			// sqrt(2/pi) * exp(-x^2/2)
			y = a.NewFloat(x)
			y.Mul(y, y)
			y.SetMantExp(y, -1)
			y = a.Exp(y.Neg(y))
			return y.Mul(y, scale)
		},
		Start: a.NewFloat(0),
		End:   TailEnd(a),
	}
}

func erf(a bignum.Arithmetic) Target {
	return Target{
		Name: "erf",
		F:    a.Erf,
		Df: func(x *big.Float) (y *big.Float) {
			return bignum.ErfDerivative(a.NewFloat(x))
		},
		Start: a.NewFloat(0),
		End:   TailEnd(a),
	}
}

func exp(a bignum.Arithmetic) Target {
	return Target{
		Name:  "exp",
		F:     a.Exp,
		Df:    a.Exp,
		Start: a.NewFloat(0),
		End:   a.NewFloat(1),
	}
}

func sigmoid(a bignum.Arithmetic) Target {
	return Target{
		Name: "sigmoid",
		F: func(x *big.Float) (y *big.Float) {
			return bignum.Sigmoid(a.NewFloat(x))
		},
		Df: func(x *big.Float) (y *big.Float) {
			// s(1-s)
			s := bignum.Sigmoid(a.NewFloat(x))
			y = a.NewFloat(1)
			y.Sub(y, s)
			return y.Mul(y, s)
		},
		Start: a.NewFloat(-8),
		End:   a.NewFloat(8),
	}
}

func tanh(a bignum.Arithmetic) Target {
	return Target{
		Name: "tanh",
		F: func(x *big.Float) (y *big.Float) {
			return bignum.TanH(a.NewFloat(x))
		},
		Df: func(x *big.Float) (y *big.Float) {
			// 1 - tanh^2
			t := bignum.TanH(a.NewFloat(x))
			t.Mul(t, t)
			y = a.NewFloat(1)
			return y.Sub(y, t)
		},
		Start: a.NewFloat(-4),
		End:   a.NewFloat(4),
	}
}

// log1p is ln(1+x), defined for x > -1.
func log1p(a bignum.Arithmetic) Target {
	return Target{
		Name: "log1p",
		F: func(x *big.Float) (y *big.Float) {
			y = a.NewFloat(x)
			return a.Log(y.Add(y, a.NewFloat(1)))
		},
		Df: func(x *big.Float) (y *big.Float) {
			y = a.NewFloat(x)
			y.Add(y, a.NewFloat(1))
			return y.Quo(a.NewFloat(1), y)
		},
		Start: a.NewFloat(0),
		End:   a.NewFloat(1),
	}
}

