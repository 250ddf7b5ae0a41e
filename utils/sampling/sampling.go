// Package sampling implements reproducible sampling of points of an interval.
package sampling

import (
	"encoding/binary"
	"io"
	"math/big"
	"sort"

	"golang.org/x/xerrors"
)

// Uint64 reads a uniform uint64 from r.
func Uint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, xerrors.Errorf("cannot sample Uint64: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Float returns a point of [start, end) at precision prec, uniform over a grid of
// 2^64 points.
func Float(r io.Reader, start, end *big.Float, prec uint) (x *big.Float, err error) {

	var u uint64
	if u, err = Uint64(r); err != nil {
		return nil, err
	}

	// u / 2^64
	x = new(big.Float).SetPrec(prec).SetUint64(u)
	x.SetMantExp(x, -64)

	width := new(big.Float).SetPrec(prec).Sub(end, start)
	x.Mul(x, width)

	return x.Add(x, start), nil
}

// Floats returns count sorted points of [start, end).
func Floats(r io.Reader, start, end *big.Float, prec uint, count int) (xs []*big.Float, err error) {

	xs = make([]*big.Float, count)
	for i := range xs {
		if xs[i], err = Float(r, start, end, prec); err != nil {
			return nil, err
		}
	}

	sortFloats(xs)

	return xs, nil
}

func sortFloats(xs []*big.Float) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].Cmp(xs[j]) < 0 })
}
