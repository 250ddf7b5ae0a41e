package rational

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratfit/ratfit/utils/bignum"
)

func TestRational(t *testing.T) {

	ctx := bignum.NewContext(30)

	t.Run("ConstantIdentity", func(t *testing.T) {
		c := ctx.NewFloat(-2.75)
		r := NewRational([]*big.Float{c}, nil)
		for _, x := range []float64{-10, -1, 0, 0.5, 3, 1e10} {
			y, err := r.Evaluate(ctx.NewFloat(x))
			require.NoError(t, err)
			require.Zero(t, y.Cmp(c), fmt.Sprintf("x=%v", x))
		}
	})

	t.Run("Evaluate", func(t *testing.T) {
		// (1 + 2x) / (1 + x)
		r := NewRational([]*big.Float{ctx.NewFloat(1), ctx.NewFloat(2)}, []*big.Float{ctx.NewFloat(1)})

		y, err := r.Evaluate(ctx.NewFloat(1))
		require.NoError(t, err)
		require.Zero(t, y.Cmp(ctx.NewFloat(1.5)))

		// (1 + 2x + 3x^2) / (1 - x + x^2) at x = 2: 17/3
		r = NewRational(
			[]*big.Float{ctx.NewFloat(1), ctx.NewFloat(2), ctx.NewFloat(3)},
			[]*big.Float{ctx.NewFloat(-1), ctx.NewFloat(1)})

		y, err = r.Evaluate(ctx.NewFloat(2))
		require.NoError(t, err)

		want := ctx.NewFloat(17)
		want.Quo(want, ctx.NewFloat(3))
		require.Zero(t, y.Cmp(want))
	})

	t.Run("DivisionByZero", func(t *testing.T) {
		// 1 / (1 - x)
		r := NewRational([]*big.Float{ctx.NewFloat(1)}, []*big.Float{ctx.NewFloat(-1)})

		_, err := r.Evaluate(ctx.NewFloat(1))
		require.ErrorIs(t, err, ErrDivisionByZero)

		_, err = r.Derivative(ctx.NewFloat(1))
		require.ErrorIs(t, err, ErrDivisionByZero)

		_, err = r.Evaluate(ctx.NewFloat(0.5))
		require.NoError(t, err)
	})

	t.Run("Idempotence", func(t *testing.T) {
		r := NewRational(
			[]*big.Float{ctx.NewFloat(0.1), ctx.NewFloat(-0.7), ctx.NewFloat(1.3)},
			[]*big.Float{ctx.NewFloat(0.25), ctx.NewFloat(0.5)})

		x := ctx.NewFloat(0.377)

		y0, err := r.Evaluate(x)
		require.NoError(t, err)
		y1, err := r.Evaluate(x)
		require.NoError(t, err)

		require.Zero(t, y0.Cmp(y1))
		require.Equal(t, y0.Text('p', 0), y1.Text('p', 0))
		require.Zero(t, x.Cmp(ctx.NewFloat(0.377)))
	})

	t.Run("Derivative", func(t *testing.T) {
		r := NewRational(
			[]*big.Float{ctx.NewFloat(0.1), ctx.NewFloat(-0.7), ctx.NewFloat(1.3)},
			[]*big.Float{ctx.NewFloat(0.25), ctx.NewFloat(0.5)})

		f := func(x *big.Float) (y *big.Float) {
			y, err := r.Evaluate(x)
			require.NoError(t, err)
			return
		}

		numerical := bignum.NumericalDerivative(f, ctx.Prec())

		for _, x := range []float64{-0.5, 0, 0.3, 1.7} {
			xf := ctx.NewFloat(x)
			dy, err := r.Derivative(xf)
			require.NoError(t, err)

			diff := new(big.Float).Sub(dy, numerical(xf))
			diff.Abs(diff)
			require.True(t, diff.Cmp(ctx.NewFloat(1e-15)) < 0, "x=%v: derivative differs by %g", x, diff)
		}
	})

	t.Run("CloneEqual", func(t *testing.T) {
		r := NewRational([]*big.Float{ctx.NewFloat(1), ctx.NewFloat(2)}, []*big.Float{ctx.NewFloat(3)})
		c := r.Clone()
		require.True(t, r.Equal(c))

		c.Numerator[0].SetInt64(5)
		require.False(t, r.Equal(c))
		require.Zero(t, r.Numerator[0].Cmp(ctx.NewFloat(1)))

		n, m := r.Degrees()
		require.Equal(t, 1, n)
		require.Equal(t, 1, m)
	})

	t.Run("Text", func(t *testing.T) {
		r := NewRational([]*big.Float{ctx.NewFloat(1), ctx.NewFloat(0.5)}, []*big.Float{ctx.NewFloat(-0.25)})
		require.Equal(t, "p: [1, 0.5], q: [1, -0.25]", r.String())

		r = NewRational([]*big.Float{ctx.NewFloat(2)}, nil)
		require.Equal(t, "p: [2], q: [1]", r.Text(5))
	})
}
