package partition

import (
	"io"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/utils/sampling"
)

// Sample is the signed approximation error f(x) - p(x) at a point.
type Sample struct {
	X, Error *big.Float
}

// SampledError evaluates f - p at count points drawn from prng over [Start, End] and
// returns the sample of largest |error|. Points falling in leaves that are not
// accepted are skipped and counted.
func (p *Partition) SampledError(f func(x *big.Float) (y *big.Float), prng io.Reader, count int) (peak Sample, skipped int, err error) {

	prec := p.Start.Prec()

	var xs []*big.Float
	if xs, err = sampling.Floats(prng, p.Start, p.End, prec, count); err != nil {
		return peak, 0, xerrors.Errorf("cannot SampledError: %w", err)
	}

	peak = Sample{Error: new(big.Float)}
	abs := new(big.Float)

	for _, x := range xs {

		var idx int
		if idx, err = p.Locate(x); err != nil {
			return peak, skipped, xerrors.Errorf("cannot SampledError: %w", err)
		}

		l := p.Leaves[idx]
		if !l.Accepted {
			skipped++
			continue
		}

		var y *big.Float
		if y, err = l.Rational.Evaluate(x); err != nil {
			return peak, skipped, xerrors.Errorf("cannot SampledError: %w", err)
		}

		e := new(big.Float).Sub(f(x), y)

		if abs.Abs(e).Cmp(new(big.Float).Abs(peak.Error)) > 0 {
			peak = Sample{X: x, Error: e}
		}
	}

	return peak, skipped, nil
}
