package pool

import "errors"

// Every failure mode of a pool operation maps to one of these sentinels so
// callers can branch with errors.Is. A failed call never leaves a partial
// mutation behind; the pool is always ready to serve the next call.
var (
	// ErrInsufficientShares: a withdrawal asked for more shares than the
	// account owns. Recoverable; the caller should re-query its balance.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInsufficientLiquidity: a swap was quoted against an empty reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrArithmetic: checked arithmetic detected overflow or underflow.
	// The call is aborted rather than silently saturating, since pricing
	// correctness depends on exact values.
	ErrArithmetic = errors.New("arithmetic overflow or underflow")

	// ErrNotHuman: the access guard rejected the account.
	ErrNotHuman = errors.New("account is not a verified human")

	// ErrInvalidTokenPair: swap with identical source and destination.
	ErrInvalidTokenPair = errors.New("invalid token pair")

	// ErrInvalidRate: a construction rate outside 0..10000 basis points.
	ErrInvalidRate = errors.New("rate exceeds 10000 basis points")

	// ErrUnknownToken: a token outside the closed set.
	ErrUnknownToken = errors.New("unknown token")

	// ErrZeroAmount: a mutating operation with a zero amount.
	ErrZeroAmount = errors.New("amount must be greater than zero")
)
