package rational

import (
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils/bignum"
)

const (
	// DefaultMaxRounds is the default bound on the guessed-error iteration.
	DefaultMaxRounds = 256

	// DefaultScanDensity is the default number of scan steps per gap between
	// consecutive reference points.
	DefaultScanDensity = 8

	// DefaultMaxExchanges is the default bound on the number of reference exchanges.
	DefaultMaxExchanges = 32

	// DefaultExchangeThreshold is the default relative spread between the largest
	// and the smallest alternating extremum at which the exchange stops.
	DefaultExchangeThreshold = 1e-6

	// levelBoundExp bounds the solved error term by 2^levelBoundExp * max|f(x_k)|.
	// The minimax error on the reference points never exceeds max|f(x_k)|.
	levelBoundExp = 10
)

// Parameters is a struct storing the parameters of a Fitter.
type Parameters struct {
	// Arithmetic carries the working precision and the transcendental functions.
	Arithmetic bignum.Arithmetic

	// Function is the function to approximate.
	// It has to be smooth on the intervals it is fitted on.
	Function func(x *big.Float) (y *big.Float)

	// Derivative is the derivative of Function.
	// If nil, a central difference of the approximation error is used instead.
	Derivative func(x *big.Float) (y *big.Float)

	// Numerator is the degree n of the numerator.
	Numerator int

	// Denominator is the degree m of the denominator.
	Denominator int

	// Tolerance is the value below which |guessed - solved| error terms are
	// considered converged.
	Tolerance *big.Float

	// MaxRounds is the maximum number of rounds of the guessed-error iteration.
	MaxRounds int

	// ScanDensity is the number of scan steps per gap between consecutive reference
	// points used to bracket the extrema of the approximation error.
	ScanDensity int

	// ExtremaTolerance is the bracket width at which the extrema bisection stops.
	// Defaults to Tolerance.
	ExtremaTolerance *big.Float

	// Exchange enables the reference exchange: the reference points are moved to the
	// located extrema and the fit is repeated until the error equioscillates.
	// When disabled, the reference points are evenly spaced and a single pass is done.
	Exchange bool

	// MaxExchanges is the maximum number of reference exchanges.
	MaxExchanges int

	// ExchangeThreshold is the value of (max|e| - min|e|)/max|e| over the alternating
	// extrema below which the exchange stops.
	ExchangeThreshold float64

	// Logger receives debug information about every fit. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Extremum is a point of the interval together with the signed approximation
// error f(x) - r(x) at this point.
type Extremum struct {
	X, Error *big.Float
}

// Fit is the result of a successful call to Fitter.Fit.
type Fit struct {
	*Rational

	// PeakError is the maximum of |f(x) - r(x)| over the located extrema.
	PeakError *big.Float

	// MinError is the minimum of |f(x) - r(x)| over the alternating extrema.
	MinError *big.Float

	// LevelError is the signed error term solved together with the coefficients.
	LevelError *big.Float

	// Rounds is the number of rounds of the last guessed-error iteration.
	Rounds int

	// Exchanges is the number of reference exchanges performed.
	Exchanges int

	// Nodes are the reference points of the last linear system.
	Nodes []*big.Float

	// Extrema are the alternating extrema of the approximation error.
	Extrema []Extremum
}

// Spread returns (PeakError - MinError)/PeakError, which is zero for an
// equioscillating error.
func (f *Fit) Spread() float64 {
	if f.PeakError.Sign() == 0 {
		return 0
	}
	s := new(big.Float).Sub(f.PeakError, f.MinError)
	s.Quo(s, f.PeakError)
	v, _ := s.Float64()
	return v
}

// Fitter computes minimax rational approximations of a fixed function with fixed
// degrees over arbitrary intervals.
type Fitter struct {
	Parameters
	prec  uint
	width int
}

// NewFitter validates the parameters, fills the defaults and returns a new Fitter.
func NewFitter(p Parameters) (f *Fitter, err error) {

	if p.Arithmetic == nil {
		return nil, xerrors.Errorf("cannot NewFitter: %w: Arithmetic is nil", ErrInvalidParameters)
	}

	if p.Function == nil {
		return nil, xerrors.Errorf("cannot NewFitter: %w: Function is nil", ErrInvalidParameters)
	}

	if p.Numerator < 0 || p.Denominator < 0 {
		return nil, xerrors.Errorf("cannot NewFitter: %w: degrees (%d, %d) must be non-negative", ErrInvalidParameters, p.Numerator, p.Denominator)
	}

	if p.Tolerance == nil || p.Tolerance.Sign() <= 0 {
		return nil, xerrors.Errorf("cannot NewFitter: %w: Tolerance must be positive", ErrInvalidParameters)
	}

	if p.MaxRounds <= 0 {
		p.MaxRounds = DefaultMaxRounds
	}

	if p.ScanDensity <= 0 {
		p.ScanDensity = DefaultScanDensity
	}

	if p.ExtremaTolerance == nil || p.ExtremaTolerance.Sign() <= 0 {
		p.ExtremaTolerance = p.Tolerance
	}

	if p.MaxExchanges <= 0 {
		p.MaxExchanges = DefaultMaxExchanges
	}

	if p.ExchangeThreshold <= 0 {
		p.ExchangeThreshold = DefaultExchangeThreshold
	}

	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	return &Fitter{
		Parameters: p,
		prec:       p.Arithmetic.Prec(),
		width:      p.Numerator + p.Denominator + 2,
	}, nil
}

// FitMinimax fits a rational function of degrees (n, m) to target on [start, end].
// See Fitter.Fit.
func FitMinimax(arithmetic bignum.Arithmetic, n, m int, start, end *big.Float, target func(x *big.Float) (y *big.Float), tol *big.Float, maxRounds int) (*Fit, error) {

	f, err := NewFitter(Parameters{
		Arithmetic:  arithmetic,
		Function:    target,
		Numerator:   n,
		Denominator: m,
		Tolerance:   tol,
		MaxRounds:   maxRounds,
	})

	if err != nil {
		return nil, err
	}

	return f.Fit(start, end)
}

// Fit computes the rational approximation of the function on [start, end].
//
// The n+m+2 reference points are evenly spaced over [start, end]. The linear system
//
//	sum_j p_j x_k^j + (s_k*e' - f(x_k)) * sum_j q_j x_k^(j+1) + s_k*e = f(x_k),  s_k = (-1)^k
//
// is solved for the coefficients and e, with e' a guessed error term. The guess
// starts at zero and is refined until the guess and the solved e are closer than
// Tolerance. The extrema of f - r are then located and the peak error is the largest
// of their magnitudes.
//
// A fit fails with ErrNonConvergence, ErrInsufficientExtrema, ErrDivisionByZero
// (the denominator vanishes on the interval) or bignum.ErrSingularSystem.
func (f *Fitter) Fit(start, end *big.Float) (fit *Fit, err error) {

	if start.Cmp(end) >= 0 {
		return nil, xerrors.Errorf("cannot Fit: %w: [%s, %s]", ErrInvalidInterval, start.Text('g', 10), end.Text('g', 10))
	}

	nodes := f.referencePoints(start, end)

	for exchanges := 0; ; exchanges++ {

		ys := make([]*big.Float, len(nodes))
		for i := range nodes {
			ys[i] = f.Arithmetic.NewFloat(f.Function(nodes[i]))
		}

		var r *Rational
		var level *big.Float
		var rounds int
		if r, level, rounds, err = f.solve(nodes, ys); err != nil {
			return nil, xerrors.Errorf("cannot Fit on [%s, %s]: %w", start.Text('g', 10), end.Text('g', 10), err)
		}

		var extrema []Extremum
		if extrema, err = f.findExtrema(r, start, end, nodes); err != nil {
			return nil, xerrors.Errorf("cannot Fit on [%s, %s]: %w", start.Text('g', 10), end.Text('g', 10), err)
		}

		fit = &Fit{
			Rational:   r,
			LevelError: level,
			Rounds:     rounds,
			Exchanges:  exchanges,
			Nodes:      nodes,
			Extrema:    extrema,
		}

		fit.PeakError, fit.MinError = errorBounds(extrema)

		f.Logger.Debug("fit",
			zap.String("start", start.Text('g', 10)),
			zap.String("end", end.Text('g', 10)),
			zap.Int("rounds", rounds),
			zap.Int("exchanges", exchanges),
			zap.Int("extrema", len(extrema)),
			zap.String("peak_error", fit.PeakError.Text('g', 6)),
			zap.Float64("spread", fit.Spread()))

		if !f.Exchange || exchanges >= f.MaxExchanges || fit.PeakError.Cmp(f.Tolerance) <= 0 || fit.Spread() < f.ExchangeThreshold {
			return fit, nil
		}

		nodes = chooseNewNodes(extrema, f.width)
	}
}

// referencePoints returns n+m+2 evenly spaced points of [start, end], both ends included.
func (f *Fitter) referencePoints(start, end *big.Float) (nodes []*big.Float) {

	w := f.width

	width := f.Arithmetic.NewFloat(end)
	width.Sub(width, start)

	nodes = make([]*big.Float, w)
	nodes[0] = f.Arithmetic.NewFloat(start)
	for i := 1; i < w-1; i++ {
		x := f.Arithmetic.NewFloat(i)
		x.Mul(x, width)
		x.Quo(x, f.Arithmetic.NewFloat(w-1))
		nodes[i] = x.Add(x, start)
	}
	nodes[w-1] = f.Arithmetic.NewFloat(end)

	return
}

// system returns the equioscillation linear system posed on nodes for the guessed error.
//
//	| 1 x0 ... x0^n  (e'-y0)x0 ... (e'-y0)x0^m  1 | y0
//	| 1 x1 ... x1^n (-e'-y1)x1 ... (-e'-y1)x1^m -1 | y1
//	|                      ...                     | ...
func (f *Fitter) system(nodes, ys []*big.Float, guessed *big.Float) (matrix [][]*big.Float) {

	n, m, w := f.Numerator, f.Denominator, f.width

	matrix = make([][]*big.Float, w)

	for k, x := range nodes {

		row := make([]*big.Float, w)

		sign := 1
		if k&1 == 1 {
			sign = -1
		}

		pow := f.Arithmetic.NewFloat(1)
		for j := 0; j <= n; j++ {
			row[j] = f.Arithmetic.NewFloat(pow)
			pow.Mul(pow, x)
		}

		// s_k * e' - y_k
		c := f.Arithmetic.NewFloat(sign)
		c.Mul(c, guessed)
		c.Sub(c, ys[k])

		pow.Set(x)
		for j := 1; j <= m; j++ {
			row[n+j] = f.Arithmetic.NewFloat(pow)
			row[n+j].Mul(row[n+j], c)
			pow.Mul(pow, x)
		}

		row[w-1] = f.Arithmetic.NewFloat(sign)

		matrix[k] = row
	}

	return
}

// solve runs the guessed-error iteration on the reference points and returns the
// rational function, the solved error term and the number of rounds.
//
// The first refinement replaces the guess by the average of the guess and the solved
// term. The following ones are secant steps on h(e') = e - e'. A secant step whose
// system is singular or whose solved term leaves the level bound is replaced by an
// averaging step from the last accepted guess.
func (f *Fitter) solve(nodes, ys []*big.Float) (r *Rational, solved *big.Float, rounds int, err error) {

	n, m, w := f.Numerator, f.Denominator, f.width

	bound := f.levelBound(ys)

	guessed := f.Arithmetic.NewFloat(0)
	residual := f.Arithmetic.NewFloat(0)

	// last accepted guess and its residual
	var lastGuess, lastResidual *big.Float

	var secant bool

	for rounds = 1; rounds <= f.MaxRounds; rounds++ {

		var params []*big.Float
		if params, err = bignum.SolveLinearSystem(f.system(nodes, ys, guessed), ys); err == nil {
			solved = params[w-1]
			if solved.IsInf() || (m != 0 && new(big.Float).Abs(solved).Cmp(bound) > 0) {
				err = xerrors.Errorf("%w: |e| = %s exceeds %s", ErrNonConvergence, solved.Text('g', 6), bound.Text('g', 6))
			}
		}

		if err != nil {

			if !secant {
				return nil, nil, rounds, xerrors.Errorf("round %d: %w", rounds, err)
			}

			f.Logger.Debug("secant step rejected", zap.Int("round", rounds), zap.Error(err))

			guessed.SetMantExp(lastResidual, -1)
			guessed.Add(guessed, lastGuess)

			lastGuess, lastResidual = nil, nil
			secant = false
			err = nil
			continue
		}

		r = NewRational(params[:n+1], params[n+1:n+1+m])

		// Without denominator the system does not depend on the guess
		if m == 0 {
			return r, solved, rounds, nil
		}

		residual.Sub(solved, guessed)

		if new(big.Float).Abs(residual).Cmp(f.Tolerance) < 0 {
			return r, solved, rounds, nil
		}

		next := f.Arithmetic.NewFloat(0)

		secant = false
		if lastResidual != nil {
			// e'' = e' - h(e') * (e' - e'_prev) / (h(e') - h(e'_prev))
			den := f.Arithmetic.NewFloat(residual)
			den.Sub(den, lastResidual)
			if den.Sign() != 0 {
				next.Sub(guessed, lastGuess)
				next.Mul(next, residual)
				next.Quo(next, den)
				next.Sub(guessed, next)
				secant = true
			}
		}

		if !secant {
			next.SetMantExp(residual, -1)
			next.Add(next, guessed)
		}

		lastGuess = f.Arithmetic.NewFloat(guessed)
		lastResidual = f.Arithmetic.NewFloat(residual)

		guessed = next
	}

	residual.Abs(residual)

	return nil, nil, f.MaxRounds, xerrors.Errorf("%w: |guessed - solved| = %s after %d rounds", ErrNonConvergence, residual.Text('g', 6), f.MaxRounds)
}

// levelBound returns 2^levelBoundExp * max|ys| + Tolerance.
func (f *Fitter) levelBound(ys []*big.Float) (bound *big.Float) {

	bound = f.Arithmetic.NewFloat(0)

	for _, y := range ys {
		if cmpAbs(y, bound) > 0 {
			bound.Abs(y)
		}
	}

	bound.SetMantExp(bound, levelBoundExp)

	return bound.Add(bound, f.Tolerance)
}
