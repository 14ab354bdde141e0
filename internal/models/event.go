package models

import "time"

// EventKind identifies the pool state transition an event describes.
type EventKind string

const (
	KindLiquidityAdded   EventKind = "liquidity_added"
	KindLiquidityRemoved EventKind = "liquidity_removed"
	KindTokenSwapped     EventKind = "token_swapped"
)

// PoolEvent is the notification published after every successful pool
// operation. It is append-only: consumers (indexers, UIs) never acknowledge
// it and it is never read back by the pool.
type PoolEvent struct {
	Kind      EventKind `json:"kind"`
	Account   string    `json:"account"`
	Token     string    `json:"token,omitempty"`      // liquidity events
	FromToken string    `json:"from_token,omitempty"` // swap events
	ToToken   string    `json:"to_token,omitempty"`   // swap events
	Amount    uint64    `json:"amount,omitempty"`
	Shares    uint64    `json:"shares,omitempty"`
	AmountIn  uint64    `json:"amount_in,omitempty"`
	AmountOut uint64    `json:"amount_out,omitempty"` // net of fee
	Fee       uint64    `json:"fee,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
