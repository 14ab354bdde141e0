package pool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := checkedAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	sum, err = checkedAdd(math.MaxUint64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = checkedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmetic)

	_, err = checkedAdd(math.MaxUint64, math.MaxUint64)
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestCheckedSub(t *testing.T) {
	diff, err := checkedSub(5, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), diff)

	diff, err = checkedSub(7, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), diff)

	_, err = checkedSub(0, 1)
	assert.ErrorIs(t, err, ErrArithmetic)

	_, err = checkedSub(100, 101)
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestMulDivFloor(t *testing.T) {
	out, err := mulDivFloor(10, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), out, "30/4 floors to 7")

	// Intermediate product exceeds uint64 but the quotient fits.
	out, err = mulDivFloor(math.MaxUint64, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), out)

	// Quotient itself does not fit.
	_, err = mulDivFloor(math.MaxUint64, math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmetic)

	// Division by zero is an arithmetic failure, not a panic.
	_, err = mulDivFloor(1, 1, 0)
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestApplyBps(t *testing.T) {
	// The spec's worked example: 0.3% of 91 floors to zero.
	fee, err := applyBps(91, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)

	fee, err = applyBps(10_000, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), fee)

	// 100% rate returns the full amount.
	fee, err = applyBps(12345, BpsDenominator)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), fee)

	fee, err = applyBps(12345, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestConstantProductOut(t *testing.T) {
	// Worked example: 1000/1000 reserves, 100 in -> 1000 - 909 = 91.
	out, err := constantProductOut(1000, 1000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(91), out)

	// Zero input trades to zero output.
	out, err = constantProductOut(1000, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out)

	// Either side empty cannot quote a price.
	_, err = constantProductOut(0, 1000, 10)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	_, err = constantProductOut(1000, 0, 10)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestConstantProductOutBounded(t *testing.T) {
	// The output is strictly below the destination reserve for every trade
	// that is served, including inputs at the integer boundary.
	cases := []struct {
		reserveIn, reserveOut, amountIn uint64
	}{
		{math.MaxUint64, math.MaxUint64, math.MaxUint64},
		{1000, 1000, 1},
		{1_000_000, 1_000_000, 1_000_000_000},
		{2, 2, 1},
	}
	for _, tc := range cases {
		out, err := constantProductOut(tc.reserveIn, tc.reserveOut, tc.amountIn)
		require.NoError(t, err)
		assert.Less(t, out, tc.reserveOut,
			"out must stay below reserveOut for in=%d/%d amount=%d", tc.reserveIn, tc.reserveOut, tc.amountIn)
	}
}

func TestConstantProductOutRejectsDraining(t *testing.T) {
	// Inputs that would floor the new destination reserve to zero are
	// refused instead of handing out the entire reserve.
	cases := []struct {
		reserveIn, reserveOut, amountIn uint64
	}{
		{1, 333, 333},
		{1, 1, math.MaxUint64},
		{1, math.MaxUint64, math.MaxUint64},
		{math.MaxUint64, 1, 1},
		{7, 13, 999999},
	}
	for _, tc := range cases {
		_, err := constantProductOut(tc.reserveIn, tc.reserveOut, tc.amountIn)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity,
			"draining trade must fail for in=%d/%d amount=%d", tc.reserveIn, tc.reserveOut, tc.amountIn)
	}
}

func TestConstantProductOutMonotonic(t *testing.T) {
	const reserveIn, reserveOut = 1_000_000, 2_000_000

	var prev uint64
	for amountIn := uint64(0); amountIn <= 500_000; amountIn += 1000 {
		out, err := constantProductOut(reserveIn, reserveOut, amountIn)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out, prev, "output must be non-decreasing in amountIn")
		prev = out
	}
}

func TestConstantProductOutDecreasingInReserveIn(t *testing.T) {
	// For fixed reserveOut and amountIn, a deeper source reserve yields a
	// smaller output (the trade moves the price less).
	const reserveOut, amountIn = 1_000_000, 50_000

	prev := uint64(math.MaxUint64)
	for reserveIn := uint64(100_000); reserveIn <= 2_000_000; reserveIn += 100_000 {
		out, err := constantProductOut(reserveIn, reserveOut, amountIn)
		require.NoError(t, err)
		assert.LessOrEqual(t, out, prev)
		prev = out
	}
}
