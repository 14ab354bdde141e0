package pool

import (
	"math/big"
	"math/bits"
)

// BpsDenominator is the denominator for basis-point rates.
const BpsDenominator = 10_000

// checkedAdd returns a+b or ErrArithmetic if the sum does not fit in uint64.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmetic
	}
	return sum, nil
}

// checkedSub returns a-b or ErrArithmetic if b > a.
func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmetic
	}
	return diff, nil
}

// mulDivFloor computes floor(a*b/den) with a big.Int intermediate so the
// product cannot silently truncate. The result must fit back in uint64.
func mulDivFloor(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrArithmetic
	}

	num := new(big.Int).Mul(
		new(big.Int).SetUint64(a),
		new(big.Int).SetUint64(b),
	)
	num.Div(num, new(big.Int).SetUint64(den))

	if !num.IsUint64() {
		return 0, ErrArithmetic
	}
	return num.Uint64(), nil
}

// constantProductOut prices a trade against the x*y=k invariant:
//
//	out = reserveOut - (reserveIn * reserveOut) / (reserveIn + amountIn)
//
// with floor division. Intermediates use big.Int, so the k product and the
// grown input reserve cannot overflow mid-computation. The new destination
// reserve must stay positive: an input large enough to floor it to zero is
// refused with ErrInsufficientLiquidity, so the result is strictly less than
// reserveOut and a swap can never fully drain the destination side.
func constantProductOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInsufficientLiquidity
	}

	k := new(big.Int).Mul(
		new(big.Int).SetUint64(reserveIn),
		new(big.Int).SetUint64(reserveOut),
	)
	denom := new(big.Int).Add(
		new(big.Int).SetUint64(reserveIn),
		new(big.Int).SetUint64(amountIn),
	)

	// newReserveOut = floor(k / (reserveIn+amountIn)), <= reserveOut.
	newReserveOut := new(big.Int).Div(k, denom)
	if newReserveOut.Sign() == 0 {
		return 0, ErrInsufficientLiquidity
	}
	out := new(big.Int).Sub(new(big.Int).SetUint64(reserveOut), newReserveOut)

	if !out.IsUint64() {
		return 0, ErrArithmetic
	}
	return out.Uint64(), nil
}

// applyBps computes floor(amount * rateBps / 10000). Rates are validated to
// be at most 10000 at construction, so the result never exceeds amount.
func applyBps(amount, rateBps uint64) (uint64, error) {
	return mulDivFloor(amount, rateBps, BpsDenominator)
}
