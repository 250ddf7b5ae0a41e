package rational

import (
	"math/big"
	"sort"

	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils/bignum"
)

// findExtrema locates the extrema of e(x) = f(x) - r(x) over [start, end] and returns
// them reduced to a sign-alternating sequence.
//
// The interval is scanned with ScanDensity steps per gap between consecutive reference
// points. Every sign change of e' between two scan points is refined by bisection.
// The reference points themselves and both ends of the interval are candidates as well.
// If no candidate has an error larger than Tolerance, all of them are returned as is.
func (f *Fitter) findExtrema(r *Rational, start, end *big.Float, nodes []*big.Float) (alternating []Extremum, err error) {

	var evalErr error

	fErr := func(x *big.Float) (y *big.Float) {
		v, err := r.Evaluate(x)
		if err != nil {
			evalErr = err
			return f.Arithmetic.NewFloat(0)
		}
		y = f.Arithmetic.NewFloat(f.Function(x))
		return y.Sub(y, v)
	}

	var dErr func(x *big.Float) (y *big.Float)
	if f.Derivative != nil {
		dErr = func(x *big.Float) (y *big.Float) {
			dv, err := r.Derivative(x)
			if err != nil {
				evalErr = err
				return f.Arithmetic.NewFloat(0)
			}
			y = f.Arithmetic.NewFloat(f.Derivative(x))
			return y.Sub(y, dv)
		}
	} else {
		dErr = bignum.NumericalDerivative(fErr, f.prec)
	}

	// After an exchange the reference points may not reach the ends of the interval
	breaks := nodes
	if nodes[0].Cmp(start) > 0 {
		breaks = append([]*big.Float{start}, breaks...)
	}
	if nodes[len(nodes)-1].Cmp(end) < 0 {
		breaks = append(breaks[:len(breaks):len(breaks)], end)
	}

	grid := f.scanGrid(breaks)

	// A pole inside the interval shows up as a sign change of the denominator
	sign := r.EvaluateDenominator(grid[0]).Sign()
	for _, x := range grid {
		if s := r.EvaluateDenominator(x).Sign(); s == 0 || s != sign {
			return nil, xerrors.Errorf("%w: denominator changes sign near x=%s", ErrDivisionByZero, x.Text('g', 10))
		}
	}

	slopes := make([]int, len(grid))
	for i := range grid {
		slopes[i] = dErr(grid[i]).Sign()
	}

	if evalErr != nil {
		return nil, evalErr
	}

	candidates := make([]*big.Float, len(breaks), len(breaks)+len(grid))
	copy(candidates, breaks)

	for i := 0; i < len(grid)-1; i++ {

		if slopes[i]*slopes[i+1] < 0 {

			var x *big.Float
			if x, err = bignum.FindExtremum(dErr, grid[i], grid[i+1], f.ExtremaTolerance); err != nil {
				return nil, xerrors.Errorf("cannot refine extremum on [%s, %s]: %w", grid[i].Text('g', 10), grid[i+1].Text('g', 10), err)
			}

			candidates = append(candidates, x)

		} else if slopes[i+1] == 0 && i+1 < len(grid)-1 {
			// stationary point exactly on the scan grid
			candidates = append(candidates, grid[i+1])
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Cmp(candidates[j]) < 0
	})

	points := make([]Extremum, len(candidates))
	for i, x := range candidates {
		points[i] = Extremum{X: x, Error: fErr(x)}
	}

	if evalErr != nil {
		return nil, evalErr
	}

	// The function is reproduced exactly: there is nothing to equioscillate
	if peak, _ := errorBounds(points); peak.Cmp(f.Tolerance) <= 0 {
		return points, nil
	}

	if alternating = alternate(points); len(alternating) < f.width {
		return nil, xerrors.Errorf("%w: found %d, need %d", ErrInsufficientExtrema, len(alternating), f.width)
	}

	return
}

// scanGrid subdivides every gap between consecutive nodes into ScanDensity steps.
func (f *Fitter) scanGrid(nodes []*big.Float) (grid []*big.Float) {

	density := f.ScanDensity

	grid = make([]*big.Float, 0, (len(nodes)-1)*density+1)

	step := f.Arithmetic.NewFloat(0)
	d := f.Arithmetic.NewFloat(density)

	for i := 0; i < len(nodes)-1; i++ {

		step.Sub(nodes[i+1], nodes[i])
		step.Quo(step, d)

		grid = append(grid, f.Arithmetic.NewFloat(nodes[i]))

		for j := 1; j < density; j++ {
			x := f.Arithmetic.NewFloat(j)
			x.Mul(x, step)
			grid = append(grid, x.Add(x, nodes[i]))
		}
	}

	return append(grid, f.Arithmetic.NewFloat(nodes[len(nodes)-1]))
}

// alternate removes consecutive points whose errors share the same sign, keeping the
// one of largest magnitude. Points with a zero error are dropped.
func alternate(points []Extremum) (alternating []Extremum) {

	for _, p := range points {

		s := p.Error.Sign()

		if s == 0 {
			continue
		}

		if last := len(alternating) - 1; last >= 0 && alternating[last].Error.Sign() == s {
			if cmpAbs(p.Error, alternating[last].Error) > 0 {
				alternating[last] = p
			}
			continue
		}

		alternating = append(alternating, p)
	}

	return
}

// chooseNewNodes reduces a sign-alternating sequence of extrema to w points,
// removing the points of smallest error while preserving the alternation.
func chooseNewNodes(points []Extremum, w int) (nodes []*big.Float) {

	points = append([]Extremum{}, points...)

	tmp := new(big.Float)
	minPair := new(big.Float)

	for len(points) > w {

		switch {
		case len(points) == w+1:

			// Removes the smallest one between the first and the last
			if cmpAbs(points[0].Error, points[len(points)-1].Error) > 0 {
				points = points[:len(points)-1]
			} else {
				points = points[1:]
			}

		case len(points) == w+2:

			// Smallest sum of two cyclically adjacent points
			minIdx := -1
			for i := range points {
				tmp.Abs(points[i].Error)
				tmp.Add(tmp, new(big.Float).Abs(points[(i+1)%len(points)].Error))
				if minIdx < 0 || tmp.Cmp(minPair) < 0 {
					minPair.Set(tmp)
					minIdx = i
				}
			}

			if minIdx == len(points)-1 {
				points = points[1 : len(points)-1]
			} else {
				points = append(points[:minIdx], points[minIdx+2:]...)
			}

		default:

			// Smallest sum of two adjacent points, the ends are removed alone
			minIdx := -1
			for i := range points[:len(points)-1] {
				tmp.Abs(points[i].Error)
				tmp.Add(tmp, new(big.Float).Abs(points[i+1].Error))
				if minIdx < 0 || tmp.Cmp(minPair) < 0 {
					minPair.Set(tmp)
					minIdx = i
				}
			}

			switch minIdx {
			case 0:
				points = points[1:]
			case len(points) - 2:
				points = points[:len(points)-1]
			default:
				points = append(points[:minIdx], points[minIdx+2:]...)
			}
		}
	}

	nodes = make([]*big.Float, len(points))
	for i := range points {
		nodes[i] = points[i].X
	}

	return
}

// errorBounds returns the largest and the smallest |error| over the extrema.
func errorBounds(points []Extremum) (peak, low *big.Float) {

	peak = new(big.Float)
	low = new(big.Float)

	for i, p := range points {
		a := new(big.Float).Abs(p.Error)
		if a.Cmp(peak) > 0 {
			peak.Set(a)
		}
		if i == 0 || a.Cmp(low) < 0 {
			low.Set(a)
		}
	}

	return
}

func cmpAbs(a, b *big.Float) int {
	return new(big.Float).Abs(a).Cmp(new(big.Float).Abs(b))
}
