package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSortedKeys(t *testing.T) {
	m := map[int]int{1: 1, 3: 3, 2: 2}
	require.Equal(t, []int{1, 2, 3}, GetSortedKeys(m))
	m = map[int]int{-1: 1, -3: 3, -2: 2}
	require.Equal(t, []int{-3, -2, -1}, GetSortedKeys(m))

	s := map[string]bool{"tanh": true, "erf": true, "phi": true}
	require.Equal(t, []string{"erf", "phi", "tanh"}, GetSortedKeys(s))
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 3, Max(2, 3))
	require.Equal(t, 2, Min(2, 3))
	require.Equal(t, -1.5, Min(-1.5, 0.5))
}
