package rational

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratfit/ratfit/approximation/functions"
	"github.com/ratfit/ratfit/utils/bignum"
)

func requireAlternating(t *testing.T, extrema []Extremum) {
	for i := 1; i < len(extrema); i++ {
		require.Equal(t, -extrema[i-1].Error.Sign(), extrema[i].Error.Sign(), "extrema %d and %d", i-1, i)
		require.True(t, extrema[i-1].X.Cmp(extrema[i].X) < 0)
	}
}

// maxSampledError returns max |f(x) - r(x)| over samples+1 evenly spaced points.
func maxSampledError(t *testing.T, ctx bignum.Context, f func(x *big.Float) *big.Float, r *Rational, a, b float64, samples int) *big.Float {
	peak := new(big.Float)
	for i := 0; i <= samples; i++ {
		x := ctx.NewFloat(a + (b-a)*float64(i)/float64(samples))
		y, err := r.Evaluate(x)
		require.NoError(t, err)
		y.Sub(f(x), y)
		if y.Abs(y).Cmp(peak) > 0 {
			peak.Set(y)
		}
	}
	return peak
}

func TestFitter(t *testing.T) {

	ctx := bignum.NewContext(30)

	tol := ctx.NewFloat(1e-25)

	zero, one := ctx.NewFloat(0), ctx.NewFloat(1)

	t.Run("Constant", func(t *testing.T) {
		three := ctx.NewFloat(3)
		fit, err := FitMinimax(ctx, 0, 0, zero, one, func(x *big.Float) *big.Float { return three }, tol, 16)
		require.NoError(t, err)
		require.Zero(t, fit.Numerator[0].Cmp(three))
		require.True(t, fit.PeakError.Cmp(tol) <= 0)
	})

	t.Run("ExactRational", func(t *testing.T) {

		// (1 + 2x) / (1 + x)
		target := func(x *big.Float) (y *big.Float) {
			y = ctx.NewFloat(x)
			y.Add(y, y)
			y.Add(y, one)
			return y.Quo(y, new(big.Float).Add(x, one))
		}

		fit, err := FitMinimax(ctx, 1, 1, zero, one, target, tol, 64)
		require.NoError(t, err)

		for i, want := range []float64{1, 2} {
			diff := new(big.Float).Sub(fit.Numerator[i], ctx.NewFloat(want))
			require.True(t, diff.Abs(diff).Cmp(ctx.NewFloat(1e-20)) < 0, "p%d=%s", i, fit.Numerator[i].Text('g', 20))
		}

		diff := new(big.Float).Sub(fit.Denominator[0], one)
		require.True(t, diff.Abs(diff).Cmp(ctx.NewFloat(1e-20)) < 0)
	})

	t.Run("Polynomial", func(t *testing.T) {
		fit, err := FitMinimax(ctx, 3, 0, zero, one, ctx.Exp, tol, 64)
		require.NoError(t, err)
		require.Equal(t, 1, fit.Rounds)
		require.Len(t, fit.Denominator, 0)
		require.GreaterOrEqual(t, len(fit.Extrema), 5)
		requireAlternating(t, fit.Extrema)

		// a cubic approximates exp on [0, 1] to about 1e-4
		peak, _ := fit.PeakError.Float64()
		require.Less(t, peak, 1e-3)
	})

	for _, analytic := range []bool{true, false} {

		t.Run(fmt.Sprintf("SinglePass/AnalyticDerivative=%v", analytic), func(t *testing.T) {

			p := Parameters{
				Arithmetic:  ctx,
				Function:    ctx.Exp,
				Numerator:   2,
				Denominator: 1,
				Tolerance:   tol,
			}

			if analytic {
				p.Derivative = ctx.Exp
			}

			fitter, err := NewFitter(p)
			require.NoError(t, err)

			fit, err := fitter.Fit(zero, one)
			require.NoError(t, err)

			require.Len(t, fit.Numerator, 3)
			require.Len(t, fit.Denominator, 1)
			require.Len(t, fit.Nodes, 5)
			require.Zero(t, fit.Exchanges)
			require.GreaterOrEqual(t, len(fit.Extrema), 5)
			requireAlternating(t, fit.Extrema)

			// the error at the reference points is the solved level
			level := new(big.Float).Abs(fit.LevelError)
			level.Sub(level, ctx.NewFloat(1e-20))
			require.True(t, fit.PeakError.Cmp(level) >= 0)

			sampled := maxSampledError(t, ctx, ctx.Exp, fit.Rational, 0, 1, 256)
			require.True(t, sampled.Cmp(new(big.Float).Mul(fit.PeakError, ctx.NewFloat(1+1e-9))) <= 0,
				"sampled %g > peak %g", sampled, fit.PeakError)
		})
	}

	t.Run("Equioscillation", func(t *testing.T) {

		single, err := FitMinimax(ctx, 2, 1, zero, one, ctx.Exp, tol, DefaultMaxRounds)
		require.NoError(t, err)

		fitter, err := NewFitter(Parameters{
			Arithmetic:  ctx,
			Function:    ctx.Exp,
			Derivative:  ctx.Exp,
			Numerator:   2,
			Denominator: 1,
			Tolerance:   tol,
			Exchange:    true,
		})
		require.NoError(t, err)

		fit, err := fitter.Fit(zero, one)
		require.NoError(t, err)

		requireAlternating(t, fit.Extrema)
		require.GreaterOrEqual(t, len(fit.Extrema), 5)
		require.Less(t, fit.Spread(), 1e-4)

		// the exchanged fit is at least as good as the evenly spaced one
		require.True(t, fit.PeakError.Cmp(new(big.Float).Mul(single.PeakError, ctx.NewFloat(1+1e-6))) <= 0)

		sampled := maxSampledError(t, ctx, ctx.Exp, fit.Rational, 0, 1, 256)
		require.True(t, sampled.Cmp(new(big.Float).Mul(fit.PeakError, ctx.NewFloat(1+1e-9))) <= 0)
	})

	t.Run("NonConvergence", func(t *testing.T) {
		_, err := FitMinimax(ctx, 2, 1, zero, one, ctx.Exp, tol, 1)
		require.ErrorIs(t, err, ErrNonConvergence)
		require.True(t, IsFitFailure(err))
	})

	t.Run("InvalidInterval", func(t *testing.T) {
		_, err := FitMinimax(ctx, 2, 1, one, one, ctx.Exp, tol, 16)
		require.ErrorIs(t, err, ErrInvalidInterval)
		require.False(t, IsFitFailure(err))

		_, err = FitMinimax(ctx, 2, 1, one, zero, ctx.Exp, tol, 16)
		require.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("InvalidParameters", func(t *testing.T) {
		for name, p := range map[string]Parameters{
			"NilArithmetic":     {Function: ctx.Exp, Tolerance: tol},
			"NilFunction":       {Arithmetic: ctx, Tolerance: tol},
			"NegativeDegree":    {Arithmetic: ctx, Function: ctx.Exp, Numerator: -1, Tolerance: tol},
			"NilTolerance":      {Arithmetic: ctx, Function: ctx.Exp},
			"NegativeTolerance": {Arithmetic: ctx, Function: ctx.Exp, Tolerance: ctx.NewFloat(-1)},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := NewFitter(p)
				require.ErrorIs(t, err, ErrInvalidParameters)
			})
		}
	})
}

func TestSolve(t *testing.T) {

	ctx := bignum.NewContext(60)

	phi, err := functions.Lookup("phi", ctx)
	require.NoError(t, err)

	// On these intervals |guessed - solved| grows for dozens of averaging rounds
	// before it shrinks.
	for _, interval := range [][2]float64{{3, 3.1}, {4, 4.4}, {5.5, 6.2}, {3.12, 6.25}} {

		t.Run(fmt.Sprintf("Phi/[%v,%v]", interval[0], interval[1]), func(t *testing.T) {

			fitter, err := NewFitter(Parameters{
				Arithmetic:  ctx,
				Function:    phi.F,
				Derivative:  phi.Df,
				Numerator:   3,
				Denominator: 3,
				Tolerance:   ctx.NewFloat(1e-30),
			})
			require.NoError(t, err)

			nodes := fitter.referencePoints(ctx.NewFloat(interval[0]), ctx.NewFloat(interval[1]))

			ys := make([]*big.Float, len(nodes))
			for i := range nodes {
				ys[i] = phi.F(nodes[i])
			}

			r, level, rounds, err := fitter.solve(nodes, ys)
			require.NoError(t, err)
			require.Less(t, rounds, DefaultMaxRounds)
			require.True(t, new(big.Float).Abs(level).Cmp(fitter.levelBound(ys)) <= 0)

			// r(x_k) + s_k*e = f(x_k) on the reference points
			slack := ctx.NewFloat(1e-20)
			for k, x := range nodes {
				y, err := r.Evaluate(x)
				require.NoError(t, err)
				if k&1 == 0 {
					y.Add(y, level)
				} else {
					y.Sub(y, level)
				}
				y.Sub(y, ys[k])
				require.True(t, y.Abs(y).Cmp(slack) < 0, "node %d: residual %g", k, y)
			}
		})
	}

	t.Run("LevelBound", func(t *testing.T) {

		fitter, err := NewFitter(Parameters{
			Arithmetic:  ctx,
			Function:    ctx.Exp,
			Numerator:   1,
			Denominator: 1,
			Tolerance:   ctx.NewFloat(1e-30),
		})
		require.NoError(t, err)

		ys := []*big.Float{ctx.NewFloat(0.5), ctx.NewFloat(-2), ctx.NewFloat(1)}

		want := ctx.NewFloat(2048)
		want.Add(want, fitter.Tolerance)
		require.Zero(t, fitter.levelBound(ys).Cmp(want))
	})
}

func TestAlternate(t *testing.T) {

	points := func(errs ...float64) (p []Extremum) {
		for i, e := range errs {
			p = append(p, Extremum{X: big.NewFloat(float64(i)), Error: big.NewFloat(e)})
		}
		return
	}

	alt := alternate(points(1, 3, -2, 0, -5, 4, 0.5, -1))
	require.Len(t, alt, 4)

	want := []float64{3, -5, 4, -1}
	for i := range alt {
		v, _ := alt[i].Error.Float64()
		require.Equal(t, want[i], v)
	}
}

func TestChooseNewNodes(t *testing.T) {

	points := func(errs ...float64) (p []Extremum) {
		for i, e := range errs {
			p = append(p, Extremum{X: big.NewFloat(float64(i)), Error: big.NewFloat(e)})
		}
		return
	}

	xs := func(nodes []*big.Float) (v []float64) {
		for _, n := range nodes {
			f, _ := n.Float64()
			v = append(v, f)
		}
		return
	}

	t.Run("OneExtra", func(t *testing.T) {
		require.Equal(t, []float64{1, 2, 3, 4}, xs(chooseNewNodes(points(1, -2, 2, -2, 2), 4)))
		require.Equal(t, []float64{0, 1, 2, 3}, xs(chooseNewNodes(points(2, -2, 2, -2, 1), 4)))
	})

	t.Run("TwoExtra", func(t *testing.T) {
		require.Equal(t, []float64{0, 1, 4, 5}, xs(chooseNewNodes(points(3, -3, 1, -1, 3, -3), 4)))
		require.Equal(t, []float64{1, 2, 3, 4}, xs(chooseNewNodes(points(1, -3, 3, -3, 3, -1), 4)))
	})

	t.Run("Exact", func(t *testing.T) {
		require.Equal(t, []float64{0, 1, 2}, xs(chooseNewNodes(points(1, -1, 1), 3)))
	})
}
