package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xorcare/golden"
	"golang.org/x/text/language"

	"github.com/ratfit/ratfit/table"
)

func testTable() *table.Table {
	return &table.Table{
		Function:          "phi",
		Digits:            20,
		NumeratorDegree:   3,
		DenominatorDegree: 3,
		Start:             "0",
		End:               "2",
		TargetError:       "1e-08",
		Leaves: []table.Leaf{
			{Start: "0", End: "0.25", PeakError: "1e-10", Accepted: true},
			{Start: "0.25", End: "0.5", PeakError: "1e-8", Accepted: true},
			{Start: "0.5", End: "1", Diagnostic: "minimum width reached"},
			{Start: "1", End: "2", PeakError: "1e-9", Accepted: true},
		},
	}
}

func TestSummarize(t *testing.T) {

	s, err := Summarize(testTable())
	require.NoError(t, err)

	require.Equal(t, 4, s.Leaves)
	require.Equal(t, 3, s.Accepted)
	require.Equal(t, 1, s.Unresolved)
	require.Equal(t, "1e-8", s.MaxPeakError)

	require.InDelta(t, -10, s.PeakError.Min, 1e-12)
	require.InDelta(t, -8, s.PeakError.Max, 1e-12)
	require.InDelta(t, -9, s.PeakError.Mean, 1e-12)
	require.InDelta(t, -9, s.PeakError.Median, 1e-12)

	require.Equal(t, Stats{Min: 0.25, Max: 1, Mean: 0.5, Median: 0.375}, s.Width)

	t.Run("Malformed", func(t *testing.T) {
		tab := testTable()
		tab.Leaves[1].End = "half"
		_, err := Summarize(tab)
		require.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		s, err := Summarize(&table.Table{Digits: 20})
		require.NoError(t, err)
		require.Zero(t, s.Leaves)
		require.Equal(t, Stats{}, s.Width)
	})
}

func TestRender(t *testing.T) {

	s, err := Summarize(testTable())
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, Render(&b, s, language.English))

	golden.Assert(t, b.Bytes())

	t.Run("German", func(t *testing.T) {
		var b bytes.Buffer
		require.NoError(t, Render(&b, s, language.German))
		require.Contains(t, b.String(), "min 0,2500")
	})
}
