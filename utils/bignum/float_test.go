package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	testFunc1("Log", 1.4142135623730951, math.Log, Log, 1e-15, t)
	testFunc1("Exp", 1.4142135623730951, math.Exp, Exp, 1e-15, t)
	testFunc2("Pow", 2, 1.4142135623730951, math.Pow, Pow, 1e-15, t)
	testFunc1("TanH", 1.4142135623730951, math.Tanh, TanH, 1e-15, t)
	testFunc1("Sigmoid", -0.75, func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }, Sigmoid, 1e-15, t)
	testFunc1("Sqrt", 2, math.Sqrt, Sqrt, 1e-15, t)

	for _, x := range []float64{-3.5, -1, -1e-3, 0, 0.5, 1.4142135623730951, 2.75, 5.5, 30} {
		testFunc1("Erf", x, math.Erf, Erf, 1e-15, t)
	}

	for _, x := range []float64{-0.999, -0.5, 0, 1e-5, 0.3, 0.875, 0.999999} {
		testFunc1("ErfInv", x, math.Erfinv, ErfInv, 1e-12, t)
	}
}

func TestErfHighPrecision(t *testing.T) {

	prec := DigitsToPrec(60)

	t.Run("KnownValue", func(t *testing.T) {
		// erf(1) to 60 digits
		want, ok := new(big.Float).SetPrec(prec).SetString("0.842700792949714869341220635082609259296066997966302908459937")
		require.True(t, ok)
		diff := new(big.Float).Sub(Erf(NewFloat(1, prec)), want)
		require.True(t, diff.Abs(diff).Cmp(NewFloat(1e-58, prec)) < 0, "erf(1) differs by %g", diff)
	})

	t.Run("ErfInvRoundTrip", func(t *testing.T) {
		for _, s := range []string{"0.1", "0.5", "0.99", "0.999999999999999999"} {
			x, err := ParseFloat(s, prec)
			require.NoError(t, err)
			diff := new(big.Float).Sub(Erf(ErfInv(x)), x)
			require.True(t, diff.Abs(diff).Cmp(NewFloat(1e-55, prec)) < 0, "erf(erfinv(%s)) differs by %g", s, diff)
		}
	})

	t.Run("Tail", func(t *testing.T) {
		x, err := ParseFloat("0.999999999999999999", prec)
		require.NoError(t, err)
		y, _ := ErfInv(x).Float64()
		require.InDelta(t, 6.247366043746464, y, 1e-12)
	})

	t.Run("PiCache", func(t *testing.T) {
		pi := Pi(prec)
		require.Equal(t, prec, pi.Prec())

		// callers own the returned value
		pi.Neg(pi)
		require.Equal(t, 1, Pi(prec).Sign())
		require.Zero(t, Pi(prec).Cmp(new(big.Float).Neg(pi)))

		scale := new(big.Float).Mul(erfScale(prec), Sqrt(Pi(prec)))
		diff := scale.Sub(scale, NewFloat(2, prec))
		require.True(t, diff.Abs(diff).Cmp(NewFloat(1e-58, prec)) < 0)
	})

	t.Run("Saturation", func(t *testing.T) {
		require.Zero(t, Erf(NewFloat(100, prec)).Cmp(NewFloat(1, prec)))
		require.Zero(t, Erf(NewFloat(-100, prec)).Cmp(NewFloat(-1, prec)))
	})
}

func TestDigitsToPrec(t *testing.T) {
	require.Equal(t, uint(208), DigitsToPrec(60))
	require.Equal(t, uint(62), DigitsToPrec(16))
	require.Equal(t, 60, PrecToDigits(DigitsToPrec(60)))

	ctx := NewContext(60)
	require.Equal(t, DigitsToPrec(60), ctx.Prec())
	require.Equal(t, 60, ctx.Digits())
	require.Equal(t, ctx.Prec(), ctx.NewFloat(0.25).Prec())

	_, err := ctx.Parse("not a number")
	require.Error(t, err)
}

func testFunc1(name string, x float64, f func(x float64) (y float64), g func(x *big.Float) (y *big.Float), delta float64, t *testing.T) {
	t.Run(name, func(t *testing.T) {
		y, _ := g(NewFloat(x, 128)).Float64()
		require.InDelta(t, f(x), y, delta)
	})
}

func testFunc2(name string, x, e float64, f func(x, e float64) (y float64), g func(x, e *big.Float) (y *big.Float), delta float64, t *testing.T) {
	t.Run(name, func(t *testing.T) {
		y, _ := g(NewFloat(x, 128), NewFloat(e, 128)).Float64()
		require.InDelta(t, f(x, e), y, delta)
	})
}
