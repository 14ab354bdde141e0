package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Canonical kill-switch keys consulted by the API layer. A missing flag is
// treated as enabled, so switches only need to exist to turn things off.
const (
	KeyAddLiquidityEnabled    = "pool.liquidity.add.enabled"
	KeyRemoveLiquidityEnabled = "pool.liquidity.remove.enabled"
	KeySwapEnabled            = "pool.swap.enabled"
)

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
