package bignum

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonomialEval(t *testing.T) {

	prec := uint(128)

	// 1 - 2x + 3x^2
	poly := []*big.Float{NewFloat(1, prec), NewFloat(-2, prec), NewFloat(3, prec)}

	x := NewFloat(0.5, prec)

	y, _ := MonomialEval(x, poly).Float64()
	require.Equal(t, 0.75, y)

	dy, _ := MonomialDerivativeEval(x, poly).Float64()
	require.Equal(t, 1.0, dy)

	require.Zero(t, MonomialEval(x, nil).Sign())
	require.Zero(t, MonomialDerivativeEval(x, poly[:1]).Sign())
	require.Equal(t, prec, MonomialEval(x, poly).Prec())
}
