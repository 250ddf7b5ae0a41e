// Package report summarizes approximation tables for humans.
package report

import (
	"io"
	"math"
	"math/big"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/table"
	"github.com/ratfit/ratfit/utils/bignum"
)

// Stats are the order statistics of a sample.
type Stats struct {
	Min, Max, Mean, Median float64
}

func describe(values []float64) (s Stats) {
	if len(values) == 0 {
		return
	}
	data := stats.Float64Data(values)
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	return
}

// Summary describes a table.
type Summary struct {
	Function                           string
	NumeratorDegree, DenominatorDegree int
	Start, End, TargetError            string

	Leaves, Accepted, Unresolved int

	// MaxPeakError is the largest peak error over the leaves.
	MaxPeakError string

	// PeakError are the statistics of log10 of the peak errors.
	PeakError Stats

	// Width are the statistics of the leaf widths.
	Width Stats
}

// Summarize computes the summary of t.
func Summarize(t *table.Table) (s *Summary, err error) {

	s = &Summary{
		Function:          t.Function,
		NumeratorDegree:   t.NumeratorDegree,
		DenominatorDegree: t.DenominatorDegree,
		Start:             t.Start,
		End:               t.End,
		TargetError:       t.TargetError,
		Leaves:            len(t.Leaves),
	}

	prec := bignum.DigitsToPrec(t.Digits)

	var peaks, widths []float64
	maxPeak := new(big.Float)

	for i, l := range t.Leaves {

		if l.Accepted {
			s.Accepted++
		} else {
			s.Unresolved++
		}

		var start, end *big.Float
		if start, err = bignum.ParseFloat(l.Start, prec); err != nil {
			return nil, xerrors.Errorf("cannot Summarize: leaf %d: %w", i, err)
		}

		if end, err = bignum.ParseFloat(l.End, prec); err != nil {
			return nil, xerrors.Errorf("cannot Summarize: leaf %d: %w", i, err)
		}

		w, _ := end.Sub(end, start).Float64()
		widths = append(widths, w)

		if l.PeakError == "" {
			continue
		}

		var peak *big.Float
		if peak, err = bignum.ParseFloat(l.PeakError, prec); err != nil {
			return nil, xerrors.Errorf("cannot Summarize: leaf %d: %w", i, err)
		}

		if peak.Cmp(maxPeak) > 0 {
			maxPeak.Set(peak)
			s.MaxPeakError = l.PeakError
		}

		if f, _ := peak.Float64(); f > 0 {
			peaks = append(peaks, math.Log10(f))
		}
	}

	s.PeakError = describe(peaks)
	s.Width = describe(widths)

	return s, nil
}

// Render prints s on w with the number formatting of lang.
func Render(w io.Writer, s *Summary, lang language.Tag) (err error) {

	p := message.NewPrinter(lang)

	lines := []struct {
		format string
		args   []interface{}
	}{
		{"function      %s\n", []interface{}{s.Function}},
		{"degrees       (%d, %d)\n", []interface{}{s.NumeratorDegree, s.DenominatorDegree}},
		{"domain        [%s, %s]\n", []interface{}{s.Start, s.End}},
		{"target error  %s\n", []interface{}{s.TargetError}},
		{"leaves        %d (%d accepted, %d unresolved)\n", []interface{}{s.Leaves, s.Accepted, s.Unresolved}},
		{"peak error    %s\n", []interface{}{s.MaxPeakError}},
		{"log10 error   min %.2f  max %.2f  mean %.2f  median %.2f\n", []interface{}{s.PeakError.Min, s.PeakError.Max, s.PeakError.Mean, s.PeakError.Median}},
		{"leaf width    min %.4f  max %.4f  mean %.4f  median %.4f\n", []interface{}{s.Width.Min, s.Width.Max, s.Width.Mean, s.Width.Median}},
	}

	for _, l := range lines {
		if _, err = p.Fprintf(w, l.format, l.args...); err != nil {
			return xerrors.Errorf("cannot Render: %w", err)
		}
	}

	return nil
}
