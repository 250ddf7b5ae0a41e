package bignum

import (
	"math/big"
)

// Arithmetic is the arbitrary precision capability the approximation packages are
// written against. Elementary operations (add, sub, mul, quo, cmp, sign, abs) are
// the methods of [big.Float] on values created by NewFloat, which carry the
// working precision; the functions below complete the set.
type Arithmetic interface {
	// Prec returns the working precision in bits.
	Prec() uint
	// Digits returns the working precision in significant decimal digits.
	Digits() int
	// NewFloat returns x at the working precision. See [NewFloat] for the accepted types.
	NewFloat(x interface{}) *big.Float
	// Parse parses a decimal string at the working precision.
	Parse(s string) (*big.Float, error)
	Sqrt(x *big.Float) *big.Float
	Exp(x *big.Float) *big.Float
	Log(x *big.Float) *big.Float
	Erf(x *big.Float) *big.Float
	ErfInv(x *big.Float) *big.Float
}

// Context implements [Arithmetic] at a fixed precision.
// It is created once at startup and never mutated.
type Context struct {
	digits int
	prec   uint
}

// NewContext returns a Context carrying digits significant decimal digits.
func NewContext(digits int) Context {
	return Context{
		digits: digits,
		prec:   DigitsToPrec(digits),
	}
}

// Prec returns the working precision in bits.
func (c Context) Prec() uint {
	return c.prec
}

// Digits returns the working precision in significant decimal digits.
func (c Context) Digits() int {
	return c.digits
}

// NewFloat returns x at the working precision.
func (c Context) NewFloat(x interface{}) *big.Float {
	return NewFloat(x, c.prec)
}

// Parse parses a decimal string at the working precision.
func (c Context) Parse(s string) (*big.Float, error) {
	return ParseFloat(s, c.prec)
}

// Sqrt returns sqrt(x) at the working precision.
func (c Context) Sqrt(x *big.Float) *big.Float {
	return Sqrt(c.NewFloat(x))
}

// Exp returns exp(x) at the working precision.
func (c Context) Exp(x *big.Float) *big.Float {
	return Exp(c.NewFloat(x))
}

// Log returns ln(x) at the working precision.
func (c Context) Log(x *big.Float) *big.Float {
	return Log(c.NewFloat(x))
}

// Erf returns erf(x) at the working precision.
func (c Context) Erf(x *big.Float) *big.Float {
	return Erf(c.NewFloat(x))
}

// ErfInv returns erfinv(x) at the working precision.
func (c Context) ErfInv(x *big.Float) *big.Float {
	return ErfInv(c.NewFloat(x))
}
