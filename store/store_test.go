package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratfit/ratfit/table"
)

func testTable(function string) *table.Table {
	return &table.Table{
		Function:          function,
		Digits:            20,
		NumeratorDegree:   1,
		DenominatorDegree: 0,
		Start:             "0",
		End:               "1",
		TargetError:       "0.001",
		Leaves: []table.Leaf{
			{Start: "0", End: "0.5", Numerator: []string{"1", "1.2974425414002562"}, PeakError: "0.0006", Accepted: true},
			{Start: "0.5", End: "1", Diagnostic: "maximum depth 1 reached"},
		},
	}
}

func TestSQLiteStore(t *testing.T) {

	ctx := context.Background()

	s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "db", "runs.db")})
	require.NoError(t, err)
	defer s.Close()

	var _ RunStore = s

	t.Run("SaveLoad", func(t *testing.T) {

		tab := testTable("exp")

		id, err := s.SaveRun(ctx, tab)
		require.NoError(t, err)
		require.Len(t, id, 36)

		run, loaded, err := s.LoadRun(ctx, id)
		require.NoError(t, err)
		require.True(t, tab.Equal(loaded))

		require.Equal(t, id, run.ID)
		require.Equal(t, "exp", run.Function)
		require.Equal(t, 20, run.Digits)
		require.Equal(t, 1, run.NumeratorDegree)
		require.Equal(t, 2, run.Leaves)
		require.Equal(t, 1, run.Unresolved)
		require.False(t, run.CreatedAt.IsZero())

		sum, err := tab.Checksum(ChecksumHash)
		require.NoError(t, err)
		require.Equal(t, sum, run.Checksum)
	})

	t.Run("ListDelete", func(t *testing.T) {

		before, err := s.ListRuns(ctx, 0)
		require.NoError(t, err)

		ids := make([]string, 3)
		for i := range ids {
			ids[i], err = s.SaveRun(ctx, testTable("tanh"))
			require.NoError(t, err)
		}

		runs, err := s.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, len(before)+3)

		runs, err = s.ListRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)

		for _, id := range ids {
			require.NoError(t, s.DeleteRun(ctx, id))
		}

		runs, err = s.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, len(before))

		require.ErrorIs(t, s.DeleteRun(ctx, ids[0]), ErrNotFound)

		_, _, err = s.LoadRun(ctx, ids[0])
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Corrupted", func(t *testing.T) {

		id, err := s.SaveRun(ctx, testTable("exp"))
		require.NoError(t, err)

		_, err = s.db.Exec(`UPDATE runs SET checksum = ? WHERE id = ?`, "00", id)
		require.NoError(t, err)

		_, _, err = s.LoadRun(ctx, id)
		require.ErrorIs(t, err, table.ErrChecksumMismatch)
	})
}
