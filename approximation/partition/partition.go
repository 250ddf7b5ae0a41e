// Package partition implements the adaptive partitioner: the domain of a target
// function is recursively bisected until a rational minimax approximation of fixed
// degrees meets a target peak error on every sub-interval.
package partition

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/approximation/rational"
	"github.com/ratfit/ratfit/utils/bignum"
)

// DefaultMaxDepth is the default bound on the bisection depth.
const DefaultMaxDepth = 48

var (
	// ErrUnresolved is matched by an UnresolvedError.
	ErrUnresolved = errors.New("partition: unresolved intervals")

	// ErrInvalidPartition is returned by Validate when the leaves do not cover the
	// domain exactly or when an accepted leaf exceeds the target error.
	ErrInvalidPartition = errors.New("partition: invalid partition")

	// ErrOutOfDomain is returned by Locate and Evaluate for a point outside the domain.
	ErrOutOfDomain = errors.New("partition: point outside of the domain")
)

// Parameters is a struct storing the parameters of a Builder.
type Parameters struct {
	// Parameters are the parameters of the fitter applied on every sub-interval.
	rational.Parameters

	// TargetError is the peak error every leaf must meet.
	TargetError *big.Float

	// MaxDepth bounds the bisection depth. Defaults to DefaultMaxDepth.
	MaxDepth int

	// MinWidth, if not nil, is the width below which an interval is not split anymore.
	MinWidth *big.Float

	// TolerateFailures makes Build return a nil error when some intervals could not
	// be resolved. Their leaves are still marked as not accepted.
	TolerateFailures bool
}

// Leaf is a sub-interval of the partition together with its approximation.
type Leaf struct {
	Start, End *big.Float

	// Rational is the approximation on [Start, End]. It is nil if no fit could be
	// produced on this interval.
	Rational *rational.Rational

	// PeakError is the peak error of Rational on [Start, End], nil if Rational is nil.
	PeakError *big.Float

	// Depth is the number of bisections that led to this interval.
	Depth int

	// Accepted is true if PeakError is at most the target error.
	Accepted bool

	// Diagnostic explains why the leaf was not accepted.
	Diagnostic string
}

// Partition is an ordered sequence of leaves covering [Start, End].
type Partition struct {
	Start, End             *big.Float
	Numerator, Denominator int
	TargetError            *big.Float
	Leaves                 []Leaf
}

// UnresolvedError is returned by Build when some intervals could not be
// approximated within the target error before a recursion guard tripped.
type UnresolvedError struct {
	Leaves []Leaf
}

func (e *UnresolvedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d interval(s) could not converge", ErrUnresolved, len(e.Leaves))
	for _, l := range e.Leaves {
		fmt.Fprintf(&sb, "; [%s, %s]: %s", l.Start.Text('g', 10), l.End.Text('g', 10), l.Diagnostic)
	}
	return sb.String()
}

// Unwrap returns ErrUnresolved.
func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

// Builder builds partitions with fixed parameters.
type Builder struct {
	Parameters
	fitter *rational.Fitter
}

// NewBuilder validates the parameters and returns a new Builder.
func NewBuilder(p Parameters) (b *Builder, err error) {

	if p.TargetError == nil || p.TargetError.Sign() <= 0 {
		return nil, xerrors.Errorf("cannot NewBuilder: %w: TargetError must be positive", rational.ErrInvalidParameters)
	}

	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultMaxDepth
	}

	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	var fitter *rational.Fitter
	if fitter, err = rational.NewFitter(p.Parameters); err != nil {
		return nil, xerrors.Errorf("cannot NewBuilder: %w", err)
	}

	return &Builder{Parameters: p, fitter: fitter}, nil
}

// BuildPartition partitions [start, end] for target with rational approximations of
// degrees (n, m) meeting targetError, using the default recursion guards.
func BuildPartition(arithmetic bignum.Arithmetic, start, end *big.Float, target func(x *big.Float) (y *big.Float), n, m int, tol, targetError *big.Float) (*Partition, error) {

	b, err := NewBuilder(Parameters{
		Parameters: rational.Parameters{
			Arithmetic:  arithmetic,
			Function:    target,
			Numerator:   n,
			Denominator: m,
			Tolerance:   tol,
		},
		TargetError: targetError,
	})

	if err != nil {
		return nil, err
	}

	return b.Build(context.Background(), start, end)
}

// Build fits [start, end], and splits it at its midpoint whenever the fit fails or
// its peak error exceeds the target, recursing on the left then on the right half.
//
// Intervals that reach MaxDepth, MinWidth or can no longer be split at the working
// precision become leaves with Accepted set to false. The partition always covers
// [start, end]; if some leaves are not accepted, an *UnresolvedError is returned
// with it unless TolerateFailures is set.
func (b *Builder) Build(ctx context.Context, start, end *big.Float) (p *Partition, err error) {

	if start.Cmp(end) >= 0 {
		return nil, xerrors.Errorf("cannot Build: %w: [%s, %s]", rational.ErrInvalidInterval, start.Text('g', 10), end.Text('g', 10))
	}

	p = &Partition{
		Start:       b.Arithmetic.NewFloat(start),
		End:         b.Arithmetic.NewFloat(end),
		Numerator:   b.Numerator,
		Denominator: b.Denominator,
		TargetError: b.Arithmetic.NewFloat(b.TargetError),
	}

	if err = b.build(ctx, p.Start, p.End, 0, &p.Leaves); err != nil {
		return nil, xerrors.Errorf("cannot Build: %w", err)
	}

	var unresolved []Leaf
	for _, l := range p.Leaves {
		if !l.Accepted {
			unresolved = append(unresolved, l)
		}
	}

	b.Logger.Info("partition built",
		zap.String("start", start.Text('g', 10)),
		zap.String("end", end.Text('g', 10)),
		zap.Int("leaves", len(p.Leaves)),
		zap.Int("unresolved", len(unresolved)))

	if len(unresolved) != 0 && !b.TolerateFailures {
		return p, &UnresolvedError{Leaves: unresolved}
	}

	return p, nil
}

func (b *Builder) build(ctx context.Context, start, end *big.Float, depth int, leaves *[]Leaf) (err error) {

	if err = ctx.Err(); err != nil {
		return
	}

	fit, err := b.fitter.Fit(start, end)

	if err != nil && !rational.IsFitFailure(err) {
		return err
	}

	leaf := Leaf{
		Start: start,
		End:   end,
		Depth: depth,
	}

	var diagnostic string
	if err != nil {
		diagnostic = err.Error()
	} else {

		leaf.Rational = fit.Rational
		leaf.PeakError = fit.PeakError

		if fit.PeakError.Cmp(b.TargetError) <= 0 {

			b.Logger.Debug("leaf accepted",
				zap.String("start", start.Text('g', 10)),
				zap.String("end", end.Text('g', 10)),
				zap.Int("depth", depth),
				zap.String("peak_error", fit.PeakError.Text('g', 6)))

			leaf.Accepted = true
			*leaves = append(*leaves, leaf)
			return nil
		}

		diagnostic = fmt.Sprintf("peak error %s exceeds target %s", fit.PeakError.Text('g', 6), b.TargetError.Text('g', 6))
	}

	mid := b.Arithmetic.NewFloat(start)
	mid.Add(mid, end)
	mid.SetMantExp(mid, -1)

	var guard string
	switch {
	case depth >= b.MaxDepth:
		guard = fmt.Sprintf("maximum depth %d reached", b.MaxDepth)
	case b.MinWidth != nil && new(big.Float).Sub(end, start).Cmp(b.MinWidth) <= 0:
		guard = fmt.Sprintf("minimum width %s reached", b.MinWidth.Text('g', 6))
	case mid.Cmp(start) == 0 || mid.Cmp(end) == 0:
		guard = "interval cannot be split at the working precision"
	}

	if guard != "" {

		leaf.Diagnostic = guard + ": " + diagnostic

		b.Logger.Warn("leaf unresolved",
			zap.String("start", start.Text('g', 10)),
			zap.String("end", end.Text('g', 10)),
			zap.Int("depth", depth),
			zap.String("diagnostic", leaf.Diagnostic))

		*leaves = append(*leaves, leaf)
		return nil
	}

	b.Logger.Debug("subdivide",
		zap.String("start", start.Text('g', 10)),
		zap.String("mid", mid.Text('g', 10)),
		zap.String("end", end.Text('g', 10)),
		zap.Int("depth", depth),
		zap.String("reason", diagnostic))

	if err = b.build(ctx, start, mid, depth+1, leaves); err != nil {
		return
	}

	return b.build(ctx, mid, end, depth+1, leaves)
}

// Validate checks that the leaves are contiguous, non-overlapping and cover
// [Start, End] exactly, and that every accepted leaf meets the target error.
// It returns an *UnresolvedError if the partition is otherwise valid but some leaves
// are not accepted.
func (p *Partition) Validate() (err error) {

	if len(p.Leaves) == 0 {
		return xerrors.Errorf("%w: no leaves", ErrInvalidPartition)
	}

	if p.Leaves[0].Start.Cmp(p.Start) != 0 {
		return xerrors.Errorf("%w: first leaf starts at %s instead of %s", ErrInvalidPartition, p.Leaves[0].Start.Text('g', 20), p.Start.Text('g', 20))
	}

	if last := p.Leaves[len(p.Leaves)-1]; last.End.Cmp(p.End) != 0 {
		return xerrors.Errorf("%w: last leaf ends at %s instead of %s", ErrInvalidPartition, last.End.Text('g', 20), p.End.Text('g', 20))
	}

	var unresolved []Leaf

	for i, l := range p.Leaves {

		if l.Start.Cmp(l.End) >= 0 {
			return xerrors.Errorf("%w: leaf %d is empty: [%s, %s]", ErrInvalidPartition, i, l.Start.Text('g', 20), l.End.Text('g', 20))
		}

		if i > 0 && p.Leaves[i-1].End.Cmp(l.Start) != 0 {
			return xerrors.Errorf("%w: leaves %d and %d are not contiguous", ErrInvalidPartition, i-1, i)
		}

		if !l.Accepted {
			unresolved = append(unresolved, l)
			continue
		}

		if l.Rational == nil || l.PeakError == nil {
			return xerrors.Errorf("%w: accepted leaf %d has no approximation", ErrInvalidPartition, i)
		}

		if p.TargetError != nil && l.PeakError.Cmp(p.TargetError) > 0 {
			return xerrors.Errorf("%w: leaf %d has peak error %s above target %s", ErrInvalidPartition, i, l.PeakError.Text('g', 6), p.TargetError.Text('g', 6))
		}
	}

	if len(unresolved) != 0 {
		return &UnresolvedError{Leaves: unresolved}
	}

	return nil
}

// Locate returns the index of the leaf covering x. A point shared by two leaves
// belongs to the left one.
func (p *Partition) Locate(x *big.Float) (idx int, err error) {

	if len(p.Leaves) == 0 || x.Cmp(p.Start) < 0 || x.Cmp(p.End) > 0 {
		return -1, xerrors.Errorf("cannot Locate: %w: x=%s", ErrOutOfDomain, x.Text('g', 10))
	}

	return sort.Search(len(p.Leaves), func(i int) bool {
		return p.Leaves[i].End.Cmp(x) >= 0
	}), nil
}

// Evaluate returns the approximation of the target at x.
func (p *Partition) Evaluate(x *big.Float) (y *big.Float, err error) {

	var idx int
	if idx, err = p.Locate(x); err != nil {
		return
	}

	l := p.Leaves[idx]

	if l.Rational == nil {
		return nil, xerrors.Errorf("cannot Evaluate: %w: no approximation on [%s, %s]", ErrUnresolved, l.Start.Text('g', 10), l.End.Text('g', 10))
	}

	return l.Rational.Evaluate(x)
}

// PeakError returns the largest peak error over the leaves.
func (p *Partition) PeakError() (peak *big.Float) {
	peak = new(big.Float)
	for _, l := range p.Leaves {
		if l.PeakError != nil && l.PeakError.Cmp(peak) > 0 {
			peak.Set(l.PeakError)
		}
	}
	return
}
