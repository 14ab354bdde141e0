package constants

// Redis keys
const (
	RedisKeyRecentEvents = "pool:events:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelAll         = "pool:events:all"
	PubSubChannelTokenPrefix = "pool:events:token:"
	PubSubChannelKindPrefix  = "pool:events:kind:"
)

// Limits
const (
	MaxRecentEvents = 100
)

// Protocol rate defaults, in basis points (parts per 10 000).
const (
	// 0.3%, the usual constant-product pool fee.
	DefaultFeeRateBps = 30
	// Half of the collected fee goes to the protocol treasury; the rest
	// compounds inside the reserve for liquidity providers.
	DefaultTreasuryRateBps = 5000
)
