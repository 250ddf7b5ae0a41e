// Package table implements the serialized form of a partition: every number is
// stored as precision-preserving decimal text so that the table can be shipped to
// and evaluated by fixed-width implementations.
package table

import (
	"errors"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/approximation/partition"
	"github.com/ratfit/ratfit/approximation/rational"
	"github.com/ratfit/ratfit/utils/bignum"
)

var (
	// ErrUnknownFormat is returned for an unsupported encoding format.
	ErrUnknownFormat = errors.New("table: unknown format")

	// ErrUnknownHash is returned for an unsupported checksum algorithm.
	ErrUnknownHash = errors.New("table: unknown hash")

	// ErrChecksumMismatch is returned by Verify when the checksum does not match.
	ErrChecksumMismatch = errors.New("table: checksum mismatch")

	// ErrMalformed is returned when a table cannot be decoded or parsed back.
	ErrMalformed = errors.New("table: malformed table")
)

// Leaf is the serialized form of a partition.Leaf.
type Leaf struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`

	// Numerator holds p0, ..., pn.
	Numerator []string `json:"numerator" yaml:"numerator"`

	// Denominator holds q1, ..., qm, the constant term 1 is implicit.
	Denominator []string `json:"denominator" yaml:"denominator"`

	// PeakError is empty if the leaf has no approximation.
	PeakError string `json:"peak_error" yaml:"peak_error"`

	Accepted   bool   `json:"accepted" yaml:"accepted"`
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// Table is the serialized form of a partition.Partition.
type Table struct {
	// Function is the name of the approximated function.
	Function string `json:"function" yaml:"function"`

	// Digits is the decimal precision the numbers were computed with. Parsing
	// them back at this precision reproduces them exactly.
	Digits int `json:"digits" yaml:"digits"`

	NumeratorDegree   int `json:"numerator_degree" yaml:"numerator_degree"`
	DenominatorDegree int `json:"denominator_degree" yaml:"denominator_degree"`

	Start       string `json:"start" yaml:"start"`
	End         string `json:"end" yaml:"end"`
	TargetError string `json:"target_error" yaml:"target_error"`

	Leaves []Leaf `json:"leaves" yaml:"leaves"`
}

// text formats x with the fewest decimal digits that parse back to x at the
// precision of x. A nil x is formatted as the empty string.
func text(x *big.Float) string {
	if x == nil {
		return ""
	}
	return x.Text('g', -1)
}

func texts(xs []*big.Float) (s []string) {
	s = make([]string, len(xs))
	for i := range xs {
		s[i] = text(xs[i])
	}
	return
}

// FromPartition returns the table of p, computed with digits significant decimal
// digits. Every number is formatted so that parsing it back at this precision gives
// the same value.
func FromPartition(p *partition.Partition, function string, digits int) *Table {

	t := &Table{
		Function:          function,
		Digits:            digits,
		NumeratorDegree:   p.Numerator,
		DenominatorDegree: p.Denominator,
		Start:             text(p.Start),
		End:               text(p.End),
		TargetError:       text(p.TargetError),
		Leaves:            make([]Leaf, len(p.Leaves)),
	}

	for i, l := range p.Leaves {

		leaf := Leaf{
			Start:      text(l.Start),
			End:        text(l.End),
			PeakError:  text(l.PeakError),
			Accepted:   l.Accepted,
			Diagnostic: l.Diagnostic,
		}

		if l.Rational != nil {
			leaf.Numerator = texts(l.Rational.Numerator)
			leaf.Denominator = texts(l.Rational.Denominator)
		}

		t.Leaves[i] = leaf
	}

	return t
}

func parse(a bignum.Arithmetic, s, field string) (*big.Float, error) {
	if s == "" {
		return nil, nil
	}
	x, err := a.Parse(s)
	if err != nil {
		return nil, xerrors.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	return x, nil
}

func parseSlice(a bignum.Arithmetic, s []string, field string) (xs []*big.Float, err error) {
	xs = make([]*big.Float, len(s))
	for i := range s {
		if xs[i], err = parse(a, s[i], field); err != nil {
			return
		}
		if xs[i] == nil {
			return nil, xerrors.Errorf("%w: %s[%d] is empty", ErrMalformed, field, i)
		}
	}
	return
}

// Partition parses the table back with the arithmetic a.
func (t *Table) Partition(a bignum.Arithmetic) (p *partition.Partition, err error) {

	p = &partition.Partition{
		Numerator:   t.NumeratorDegree,
		Denominator: t.DenominatorDegree,
		Leaves:      make([]partition.Leaf, len(t.Leaves)),
	}

	if p.Start, err = parse(a, t.Start, "start"); err != nil {
		return nil, err
	}

	if p.End, err = parse(a, t.End, "end"); err != nil {
		return nil, err
	}

	if p.Start == nil || p.End == nil {
		return nil, xerrors.Errorf("%w: missing domain", ErrMalformed)
	}

	if p.TargetError, err = parse(a, t.TargetError, "target_error"); err != nil {
		return nil, err
	}

	for i, l := range t.Leaves {

		leaf := partition.Leaf{
			Accepted:   l.Accepted,
			Diagnostic: l.Diagnostic,
		}

		if leaf.Start, err = parse(a, l.Start, "leaf.start"); err != nil {
			return nil, err
		}

		if leaf.End, err = parse(a, l.End, "leaf.end"); err != nil {
			return nil, err
		}

		if leaf.Start == nil || leaf.End == nil {
			return nil, xerrors.Errorf("%w: leaf %d has no interval", ErrMalformed, i)
		}

		if leaf.PeakError, err = parse(a, l.PeakError, "leaf.peak_error"); err != nil {
			return nil, err
		}

		if len(l.Numerator) != 0 {

			if len(l.Numerator) != t.NumeratorDegree+1 || len(l.Denominator) != t.DenominatorDegree {
				return nil, xerrors.Errorf("%w: leaf %d has degrees (%d, %d) instead of (%d, %d)",
					ErrMalformed, i, len(l.Numerator)-1, len(l.Denominator), t.NumeratorDegree, t.DenominatorDegree)
			}

			var num, den []*big.Float
			if num, err = parseSlice(a, l.Numerator, "leaf.numerator"); err != nil {
				return nil, err
			}

			if den, err = parseSlice(a, l.Denominator, "leaf.denominator"); err != nil {
				return nil, err
			}

			leaf.Rational = &rational.Rational{Numerator: num, Denominator: den}
		}

		p.Leaves[i] = leaf
	}

	return p, nil
}
