package functions

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratfit/ratfit/utils/bignum"
)

func TestLookup(t *testing.T) {

	ctx := bignum.NewContext(30)

	require.Equal(t, []string{"erf", "exp", "log1p", "phi", "sigmoid", "tanh"}, Names())

	_, err := Lookup("gamma", ctx)
	require.ErrorIs(t, err, ErrUnknownFunction)

	for _, name := range Names() {

		t.Run(name, func(t *testing.T) {

			target, err := Lookup(name, ctx)
			require.NoError(t, err)
			require.Equal(t, name, target.Name)
			require.True(t, target.Start.Cmp(target.End) < 0)

			numerical := bignum.NumericalDerivative(target.F, ctx.Prec())

			for _, u := range []float64{0.1, 0.5, 0.9} {

				// point of the default domain
				x := new(big.Float).Sub(target.End, target.Start)
				x.Mul(x, ctx.NewFloat(u))
				x.Add(x, target.Start)

				diff := new(big.Float).Sub(target.Df(x), numerical(x))
				require.True(t, diff.Abs(diff).Cmp(ctx.NewFloat(1e-15)) < 0,
					"f'(%s) differs from the central difference by %g", x.Text('g', 10), diff)
			}
		})
	}
}

func TestValues(t *testing.T) {

	ctx := bignum.NewContext(30)

	for name, c := range map[string]struct {
		x, want float64
	}{
		"phi":     {1, 0.6826894921370859},
		"erf":     {1, 0.8427007929497149},
		"exp":     {1, 2.718281828459045},
		"sigmoid": {0, 0.5},
		"tanh":    {0.5, 0.46211715726000974},
		"log1p":   {1, 0.6931471805599453},
	} {
		t.Run(name, func(t *testing.T) {
			target, err := Lookup(name, ctx)
			require.NoError(t, err)
			y, _ := target.F(ctx.NewFloat(c.x)).Float64()
			require.InDelta(t, c.want, y, 1e-15)
		})
	}

	t.Run("TailEnd", func(t *testing.T) {
		end, _ := TailEnd(ctx).Float64()
		require.InDelta(t, 6.247366043746464, end, 1e-12)
	})
}
